package handler

import (
	"strconv"

	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupWithdrawal struct {
	container *do.Injector
}

type requestWithdrawalPayload struct {
	Amount       int64  `json:"amount"`
	Method       string `json:"method"`
	PayoutDetail string `json:"payout_detail"`
}

func (gr *groupWithdrawal) Request(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload requestWithdrawalPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceWithdrawal, err := do.Invoke[*services.ServiceWithdrawal](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	request, err := serviceWithdrawal.RequestWithdrawal(ctx, account, payload.Amount, payload.Method, payload.PayoutDetail)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, request, nil)
}

func (gr *groupWithdrawal) History(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceWithdrawal, err := do.Invoke[*services.ServiceWithdrawal](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page := intQueryParam(c, "page", 1)
	limit := intQueryParam(c, "limit", 20)

	requests, err := serviceWithdrawal.History(ctx, account.ID, page, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, requests, nil)
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
