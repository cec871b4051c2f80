package handler

import (
	"context"
	"errors"
	"strings"

	"cashreward/internal/models"
	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthAccount ctxKey = "AUTH_ACCOUNT"

// Authn extracts and verifies the bearer credential. It does not terminate
// unauthenticated requests; handlers resolve the account and fail there, so
// public routes can share the group.
func Authn(verifier interface {
	ValidateInitData(dataStr string) (*models.AccountFromAuth, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			account, err := verifier.ValidateInitData(token)
			if err != nil {
				// a client error, but no details leave the server
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthAccount, account)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// ResolveValidAccount turns the verified credential into a live account,
// creating one on first contact and rejecting blocked accounts.
func ResolveValidAccount(ctx context.Context, container *do.Injector) (*models.Account, error) {
	auth, ok := ctx.Value(ctxKeyAuthAccount).(*models.AccountFromAuth)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceAccount, err := do.Invoke[*services.ServiceAccount](container)
	if err != nil {
		return nil, err
	}

	account, err := serviceAccount.FindOrCreateAccount(ctx, auth)
	if err != nil {
		return nil, err
	}

	if account.IsBlocked {
		return nil, errorx.Wrap(services.ErrAccountLocked, errorx.Authn)
	}

	return account, nil
}
