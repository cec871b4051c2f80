package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"

	"cashreward/internal/datastore"
	"cashreward/internal/models"
	"cashreward/internal/services"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			if err := datastore.CreateTableAccount(ctx, db); err != nil {
				log.Fatal(err)
			}
			if err := datastore.CreateTableCoinEntry(ctx, db); err != nil {
				log.Fatal(err)
			}
			if err := datastore.CreateTableWithdrawalRequest(ctx, db); err != nil {
				log.Fatal(err)
			}
			if err := datastore.CreateTableConfig(ctx, db); err != nil {
				log.Fatal(err)
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandConfigSeed() *cli.Command {
	return &cli.Command{
		Name:  "seed-config",
		Usage: "insert default config keys, keeping operator overrides",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			defaults := map[string]string{
				services.CONFIG_DAILY_AD_LIMIT:       strconv.Itoa(services.DEFAULT_DAILY_AD_LIMIT),
				services.CONFIG_AD_BONUS_SPIN_EVERY:  strconv.Itoa(services.DEFAULT_AD_BONUS_SPIN_EVERY),
				services.CONFIG_CHECKIN_BASE_REWARD:  strconv.Itoa(services.DEFAULT_CHECKIN_BASE_REWARD),
				services.CONFIG_CHECKIN_STREAK_STEP:  strconv.Itoa(services.DEFAULT_CHECKIN_STREAK_STEP),
				services.CONFIG_CHECKIN_STREAK_CAP:   strconv.Itoa(services.DEFAULT_CHECKIN_STREAK_CAP),
				services.CONFIG_CHALLENGE_TARGET_ADS: strconv.Itoa(services.DEFAULT_CHALLENGE_TARGET_ADS),
				services.CONFIG_CHALLENGE_BONUS:      strconv.Itoa(services.DEFAULT_CHALLENGE_BONUS),
				services.CONFIG_REFERRAL_BONUS:       strconv.Itoa(services.DEFAULT_REFERRAL_BONUS),
				services.CONFIG_SIGNING_BONUS:        strconv.Itoa(services.DEFAULT_SIGNING_BONUS),
				services.CONFIG_MIN_WITHDRAWAL:       strconv.Itoa(services.DEFAULT_MIN_WITHDRAWAL),
				services.CONFIG_PAYMENT_METHODS:      services.DEFAULT_PAYMENT_METHODS,
				services.CONFIG_COIN_VALUE_COINS:     strconv.Itoa(services.DEFAULT_COIN_VALUE_COINS),
				services.CONFIG_COIN_VALUE_CURRENCY:  strconv.Itoa(services.DEFAULT_COIN_VALUE_CURRENCY),
				services.CONFIG_LEADERBOARD_LIMIT:    strconv.Itoa(services.DEFAULT_LEADERBOARD_LIMIT),
			}

			for key, value := range defaults {
				if err := datastore.SeedConfig(ctx, db, models.Config{Key: key, Value: value}); err != nil {
					log.Fatal(err)
				}
			}

			log.Println("config seed done")
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
