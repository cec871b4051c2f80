package handler

import (
	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReferral struct {
	container *do.Injector
}

type applyReferralPayload struct {
	Code string `json:"code"`
}

func (gr *groupReferral) Apply(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload applyReferralPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	tier, err := serviceReferral.ApplyReferralCode(ctx, account, payload.Code)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"inviter_tier": tier,
	}, nil)
}

func (gr *groupReferral) Tier(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	tier, err := serviceReferral.GetTier(ctx, account.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"tier":           tier,
		"referral_code":  account.ReferralCode,
		"referral_count": account.ReferralCount,
	}, nil)
}

func (gr *groupReferral) List(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReferral, err := do.Invoke[*services.ServiceReferral](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page := intQueryParam(c, "page", 1)
	limit := intQueryParam(c, "limit", 20)

	referrals, err := serviceReferral.GetReferrals(ctx, account.ID, page, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, referrals, nil)
}
