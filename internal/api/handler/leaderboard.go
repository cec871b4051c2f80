package handler

import (
	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) GetWeeklyLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := ResolveValidAccount(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	leaderboard, err := serviceLeaderboard.GetWeeklyLeaderboard(ctx, account)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, leaderboard, nil)
}
