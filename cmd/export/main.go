package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"log"
	"os"
	"strconv"

	"cashreward/internal/datastore"
	"cashreward/internal/models"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
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
		Name: "export",
		Commands: []*cli.Command{
			commandExportWithdrawals(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// commandExportWithdrawals dumps requests in a given status as CSV for the
// payment processor's batch upload.
func commandExportWithdrawals() *cli.Command {
	return &cli.Command{
		Name: "withdrawals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Value: models.WithdrawalStatusApproved},
			&cli.StringFlag{Name: "out", Value: "withdrawals.csv"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			file, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}
			defer file.Close()

			writer := csv.NewWriter(file)
			defer writer.Flush()

			if err := writer.Write([]string{"id", "account_id", "account_name", "amount", "method", "payout_detail", "requested_at"}); err != nil {
				return err
			}

			limit := 500
			offset := 0
			total := 0
			for {
				requests, err := datastore.GetWithdrawalsByStatus(ctx, db, c.String("status"), limit, offset)
				if err != nil {
					return err
				}
				if len(requests) == 0 {
					break
				}
				offset += limit

				for _, request := range requests {
					record := []string{
						request.ID,
						strconv.FormatInt(request.AccountID, 10),
						request.AccountName,
						strconv.FormatInt(request.Amount, 10),
						request.Method,
						request.PayoutDetail,
						request.RequestedAt.Format("2006-01-02 15:04:05"),
					}
					if err := writer.Write(record); err != nil {
						return err
					}
					total++
				}
			}

			log.Println("exported rows:", total)
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
