package handler

import (
	"cashreward/internal/models"
	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAccount struct {
	container *do.Injector
}

// Me authenticates via initdata, bootstraps the account if needed, applies an
// optional referral code carried on first open, and issues the API token the
// client uses for everything else.
func (gr *groupAccount) Me(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	if refCode := c.QueryParam("refCode"); refCode != "" && account.IsNewAccount {
		serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
		if err != nil {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
		}
		// best effort; a bad code must not block the first open
		if _, err := serviceReferral.ApplyReferralCode(ctx, account, refCode); err == nil {
			serviceAccount, err := do.Invoke[*services.ServiceAccount](gr.container)
			if err == nil {
				if refreshed, err := serviceAccount.FindAccountByIDNoCache(ctx, account.ID); err == nil {
					refreshed.IsNewAccount = account.IsNewAccount
					account = refreshed
				}
			}
		}
	}

	serviceAccount, err := do.Invoke[*services.ServiceAccount](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	snapshot, err := serviceAccount.Snapshot(ctx, account.ID)
	if err == nil {
		snapshot.IsNewAccount = account.IsNewAccount
		account = snapshot
	}

	estimate, err := serviceAccount.EstimateCurrency(ctx, account.Balance)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	token, err := authentication.CreateToken(authFromAccount(account))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"token":            token,
		"account":          account,
		"balance_estimate": estimate,
	}, nil)
}

// Delete removes the caller's account and its ledger.
func (gr *groupAccount) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAccount, err := do.Invoke[*services.ServiceAccount](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceAccount.DeleteAccount(ctx, account.ID); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, nil, nil)
}

func authFromAccount(account *models.Account) *models.AccountFromAuth {
	return &models.AccountFromAuth{
		ID:        account.ID,
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}
}
