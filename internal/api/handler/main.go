package handler

import (
	"net/http"
	"os"

	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "💰")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		bot, err := do.Invoke[*services.ServiceBot](cfg.Container)
		if err != nil {
			return nil, err
		}
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)

		// /account/me authenticates with telegram initdata and issues the
		// JWT every other route expects.
		routesAPIv1Me := routesAPIv1.Group("/account/me")
		routesAPIv1Me.Use(Authn(bot))
		{
			a := groupAccount{cfg.Container}
			routesAPIv1Me.GET("", a.Me)
		}

		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.
		routesAPIv1.GET("", Hello)

		a := groupAccount{cfg.Container}
		routesAPIv1.DELETE("/account", a.Delete)

		rw := groupReward{cfg.Container}
		routesAPIv1.POST("/reward/checkin", rw.CheckIn)
		routesAPIv1.POST("/reward/ad/:kind", rw.ClaimAd)
		routesAPIv1.POST("/reward/spin", rw.Spin)
		routesAPIv1.POST("/reward/scratch", rw.Scratch)
		routesAPIv1.POST("/reward/challenge/claim", rw.ClaimChallenge)
		routesAPIv1.GET("/reward/history", rw.History)

		ref := groupReferral{cfg.Container}
		routesAPIv1.POST("/referral/apply", ref.Apply)
		routesAPIv1.GET("/referral/tier", ref.Tier)
		routesAPIv1.GET("/referral/list", ref.List)

		w := groupWithdrawal{cfg.Container}
		routesAPIv1.POST("/withdrawals", w.Request)
		routesAPIv1.GET("/withdrawals", w.History)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/weekly", l.GetWeeklyLeaderboard)

		// operator surface, gated by a static key instead of a session
		routesAdmin := routesAPIv1.Group("/admin")
		routesAdmin.Use(AdminAuthn(os.Getenv("ADMIN_API_KEY")))
		{
			ad := groupAdmin{cfg.Container}
			routesAdmin.GET("/withdrawals/pending", ad.PendingWithdrawals)
			routesAdmin.POST("/withdrawals/:id/approve", ad.ApproveWithdrawal)
			routesAdmin.POST("/withdrawals/:id/reject", ad.RejectWithdrawal)
			routesAdmin.PUT("/config", ad.SetConfig)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
