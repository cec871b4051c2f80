package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cashreward/internal/datastore"
	"cashreward/internal/models"
	"cashreward/internal/pkg/daykey"
	"cashreward/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	tele "gopkg.in/telebot.v3"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

const textStart = `💰 Welcome to CashReward!

Check in daily, watch ads, spin the wheel and scratch cards to earn coins.

🎁 Your first free spin is already waiting.
`

func main() {
	app := &cli.App{
		Name: "bot",
		Commands: []*cli.Command{
			commandListen(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandListen() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "start the telegram bot long-poller",
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired("BOT_TOKEN")
			if err != nil {
				return err
			}

			db, err := getDb()
			if err != nil {
				return err
			}

			pref := tele.Settings{
				Token:  vs["BOT_TOKEN"],
				Poller: &tele.LongPoller{Timeout: 10 * time.Second},
			}

			b, err := tele.NewBot(pref)
			if err != nil {
				return err
			}

			b.Handle("/start", commandStart)
			b.Handle("/balance", commandBalance(db))

			log.Println("bot listening")
			b.Start()
			return nil
		},
	}
}

// commandStart greets and hands off to the mini app. A referral code in the
// deep-link payload is forwarded as the webapp query so the first open can
// redeem it.
func commandStart(c tele.Context) error {
	webAppURL := os.Getenv("TELEGRAM_WEB_APP_URL")
	if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
		webAppURL = fmt.Sprintf("%s?refCode=%s", webAppURL, payload)
	}

	return c.Send(textStart, &tele.SendOptions{
		ParseMode: tele.ModeHTML,
		ReplyMarkup: &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{
				{{Text: "💰 Open CashReward", WebApp: &tele.WebApp{URL: webAppURL}}},
				{{Text: "🔊 Latest news", URL: os.Getenv("TELEGRAM_ANNOUNCEMENT_URL")}},
			},
		},
	})
}

func commandBalance(db *bun.DB) func(c tele.Context) error {
	return func(c tele.Context) error {
		account, err := datastore.FindAccountByID(context.Background(), db, c.Sender().ID)
		if err != nil {
			return c.Send("No account yet. Open the app to start earning!")
		}

		return c.Send(fmt.Sprintf(
			"💰 Balance: %d coins\n🔥 Streak: %d days\n🎡 Spins: %d\n🎟 Scratch cards: %d",
			account.Balance, displayStreak(account), account.SpinsAvailable, account.ScratchCardsAvailable,
		))
	}
}

func displayStreak(account *models.Account) int {
	return services.DisplayStreak(account, daykey.SystemClock{})
}

func getDb() (*bun.DB, error) {
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
