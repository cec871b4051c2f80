package handler

import (
	"crypto/subtle"
	"errors"
	"strings"

	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAdmin struct {
	container *do.Injector
}

// AdminAuthn gates the operator routes on a static key. An empty configured
// key disables the whole group.
func AdminAuthn(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := strings.TrimSpace(c.Request().Header.Get("X-Admin-Key"))
			if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("forbidden"), errorx.Authn))
			}
			return next(c)
		}
	}
}

func (ga *groupAdmin) PendingWithdrawals(c echo.Context) error {
	ctx := c.Request().Context()

	serviceWithdrawal, err := do.Invoke[*services.ServiceWithdrawal](ga.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page := intQueryParam(c, "page", 1)
	limit := intQueryParam(c, "limit", 50)

	requests, err := serviceWithdrawal.PendingQueue(ctx, page, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, requests, nil)
}

func (ga *groupAdmin) ApproveWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()

	serviceWithdrawal, err := do.Invoke[*services.ServiceWithdrawal](ga.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	request, err := serviceWithdrawal.Approve(ctx, c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, request, nil)
}

func (ga *groupAdmin) RejectWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()

	serviceWithdrawal, err := do.Invoke[*services.ServiceWithdrawal](ga.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	request, err := serviceWithdrawal.Reject(ctx, c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, request, nil)
}

type setConfigPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (ga *groupAdmin) SetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var payload setConfigPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}
	if payload.Key == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("key is required"), errorx.Validation))
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](ga.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	config, err := serviceConfig.SetConfig(ctx, payload.Key, payload.Value)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, config, nil)
}
