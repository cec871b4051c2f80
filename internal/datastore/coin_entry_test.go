package datastore

import (
	"database/sql"
	"strings"
	"testing"

	"cashreward/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// testDB builds a bun handle for rendering queries; nothing connects.
func testDB() *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN("postgres://localhost:5432/cashreward?sslmode=disable"),
	))
	return bun.NewDB(sqldb, pgdialect.New())
}

func TestCoinEntryInsertQueries(t *testing.T) {
	db := testDB()
	entry := &models.CoinEntry{AccountID: 7, Coins: 50, Action: "checkin:2026-08-28"}

	t.Run("ledger append inside a mutation is a hard stop", func(t *testing.T) {
		query := coinEntryInsert(db, entry).String()
		if strings.Contains(query, "ON CONFLICT") {
			t.Errorf("a duplicate entry must abort the transaction, got %q", query)
		}
	})

	t.Run("standalone credit swallows duplicates", func(t *testing.T) {
		query := coinEntryInsertIdempotent(db, entry).String()
		if !strings.Contains(query, "ON CONFLICT (account_id, action) DO NOTHING") {
			t.Errorf("standalone credit must keep the conflict clause, got %q", query)
		}
	})
}
