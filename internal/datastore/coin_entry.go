package datastore

import (
	"context"

	"cashreward/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCoinEntry(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CoinEntry)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CoinEntry)(nil)).Index("index_coin_entry_account_id").IfNotExists().Column("account_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CoinEntry)(nil)).Index("index_coin_entry_account_id_action").IfNotExists().Unique().Column("account_id", "action").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CoinEntry)(nil)).Index("index_coin_entry_created_at").IfNotExists().Column("created_at").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

// coinEntryInsert is the transactional ledger append. No conflict clause: a
// duplicate (account_id, action) violates the unique index and rolls the whole
// mutation back, so the coins never land without their entry.
func coinEntryInsert(idb bun.IDB, entry *models.CoinEntry) *bun.InsertQuery {
	return idb.NewInsert().Model(entry)
}

// coinEntryInsertIdempotent backs standalone credits that may be retried
// outside a mutation, such as the signing bonus.
func coinEntryInsertIdempotent(idb bun.IDB, entry *models.CoinEntry) *bun.InsertQuery {
	return idb.NewInsert().Model(entry).On("CONFLICT (account_id, action) DO NOTHING")
}

func InsertCoinEntry(ctx context.Context, db *bun.DB, entry *models.CoinEntry) error {
	_, err := coinEntryInsertIdempotent(db, entry).Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func insertCoinEntryTx(ctx context.Context, tx bun.Tx, entry *models.CoinEntry) error {
	_, err := coinEntryInsert(tx, entry).Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func GetAccountTotalCoins(ctx context.Context, db *bun.DB, accountID int64) (int64, error) {
	var total models.TotalCoins
	err := db.NewSelect().
		ColumnExpr("SUM(coins) as total_coins").
		ColumnExpr("account_id").
		TableExpr("coin_entry").
		Where("account_id = ?", accountID).
		GroupExpr("account_id").
		Scan(ctx, &total)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	return total.TotalCoins, nil
}

func GetCoinEntriesByAccount(ctx context.Context, db *bun.DB, accountID int64, limit, offset int) ([]*models.CoinEntry, error) {
	var entries []*models.CoinEntry
	err := db.NewSelect().Model(&entries).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
