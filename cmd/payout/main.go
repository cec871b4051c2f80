package main

import (
	"context"
	"database/sql"
	"fmt"
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

// payout is the operator side of the withdrawal queue: list what is pending,
// then settle each request as approved or rejected. Rejections return the
// held amount to the account balance.
func main() {
	app := &cli.App{
		Name: "payout",
		Commands: []*cli.Command{
			commandPending(),
			commandApprove(),
			commandReject(),
			commandBlock(),
			commandAudit(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandPending() *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "list pending withdrawal requests",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 50},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			requests, err := datastore.GetWithdrawalsByStatus(ctx, db, models.WithdrawalStatusPending, c.Int("limit"), 0)
			if err != nil {
				return err
			}

			for _, request := range requests {
				fmt.Printf("%s\t%d\t%s\t%d coins\t%s\t%s\n",
					request.ID, request.AccountID, request.AccountName,
					request.Amount, request.Method, request.RequestedAt.Format("2006-01-02 15:04"))
			}
			fmt.Println("total pending:", len(requests))
			return nil
		},
	}
}

func commandApprove() *cli.Command {
	return &cli.Command{
		Name:      "approve",
		Usage:     "mark a pending request as paid out",
		ArgsUsage: "<request-id>",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			request, err := datastore.TransitionWithdrawal(ctx, db, c.Args().First(), models.WithdrawalStatusApproved)
			if err != nil {
				return err
			}

			log.Printf("approved %s: %d coins to %s via %s\n", request.ID, request.Amount, request.PayoutDetail, request.Method)
			return nil
		},
	}
}

func commandReject() *cli.Command {
	return &cli.Command{
		Name:      "reject",
		Usage:     "refuse a pending request and refund the balance",
		ArgsUsage: "<request-id>",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			request, err := datastore.TransitionWithdrawal(ctx, db, c.Args().First(), models.WithdrawalStatusRejected)
			if err != nil {
				return err
			}

			if err := datastore.RefundWithdrawal(ctx, db, request.AccountID, request.Amount); err != nil {
				return err
			}

			log.Printf("rejected %s: refunded %d coins to account %d\n", request.ID, request.Amount, request.AccountID)
			return nil
		},
	}
}

func commandBlock() *cli.Command {
	return &cli.Command{
		Name:      "block",
		Usage:     "block or unblock an account",
		ArgsUsage: "<account-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "unblock"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			accountID, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return err
			}

			blocked := !c.Bool("unblock")
			if err := datastore.SetAccountBlocked(ctx, db, accountID, blocked); err != nil {
				return err
			}

			log.Printf("account %d blocked=%v\n", accountID, blocked)
			return nil
		},
	}
}

// commandAudit compares an account's stored lifetime earnings against the sum
// of its ledger entries before a large payout is settled.
func commandAudit() *cli.Command {
	return &cli.Command{
		Name:      "audit",
		Usage:     "reconcile an account's ledger against its stored totals",
		ArgsUsage: "<account-id>",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			accountID, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return err
			}

			account, err := datastore.FindAccountByID(ctx, db, accountID)
			if err != nil {
				return err
			}
			total, err := datastore.GetAccountTotalCoins(ctx, db, accountID)
			if err != nil {
				return err
			}

			fmt.Printf("account %d: ledger=%d lifetime=%d balance=%d\n", accountID, total, account.LifetimeEarnings, account.Balance)
			if total != account.LifetimeEarnings {
				fmt.Println("MISMATCH: ledger sum and lifetime earnings disagree")
			}
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
