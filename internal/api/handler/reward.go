package handler

import (
	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupReward struct {
	container *do.Injector
}

func (gr *groupReward) invoke(c echo.Context) (*services.ServiceReward, int64, error) {
	account, err := ResolveValidAccount(c.Request().Context(), gr.container)
	if err != nil {
		return nil, 0, err
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return nil, 0, errorx.Wrap(err, errorx.Service)
	}

	return serviceReward, account.ID, nil
}

func (gr *groupReward) CheckIn(c echo.Context) error {
	serviceReward, accountID, err := gr.invoke(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	outcome, err := serviceReward.CheckIn(c.Request().Context(), accountID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, outcome, nil)
}

type claimAdPayload struct {
	ViewToken string `json:"view_token"`
}

func (gr *groupReward) ClaimAd(c echo.Context) error {
	serviceReward, accountID, err := gr.invoke(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload claimAdPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	outcome, err := serviceReward.ClaimAdReward(c.Request().Context(), accountID, c.Param("kind"), payload.ViewToken)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, outcome, nil)
}

func (gr *groupReward) Spin(c echo.Context) error {
	serviceReward, accountID, err := gr.invoke(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	outcome, err := serviceReward.Spin(c.Request().Context(), accountID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, outcome, nil)
}

func (gr *groupReward) Scratch(c echo.Context) error {
	serviceReward, accountID, err := gr.invoke(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	outcome, err := serviceReward.Scratch(c.Request().Context(), accountID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, outcome, nil)
}

func (gr *groupReward) History(c echo.Context) error {
	serviceReward, accountID, err := gr.invoke(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	page := intQueryParam(c, "page", 1)
	limit := intQueryParam(c, "limit", 20)

	entries, err := serviceReward.History(c.Request().Context(), accountID, page, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, entries, nil)
}

func (gr *groupReward) ClaimChallenge(c echo.Context) error {
	serviceReward, accountID, err := gr.invoke(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	outcome, err := serviceReward.ClaimChallenge(c.Request().Context(), accountID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, outcome, nil)
}
