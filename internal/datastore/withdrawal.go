package datastore

import (
	"context"
	"time"

	"cashreward/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableWithdrawalRequest(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.WithdrawalRequest)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WithdrawalRequest)(nil)).Index("index_withdrawal_request_account_id").IfNotExists().Column("account_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WithdrawalRequest)(nil)).Index("index_withdrawal_request_status").IfNotExists().Column("status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindWithdrawalByID(ctx context.Context, db *bun.DB, id string) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := db.NewSelect().Model(&request).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func GetWithdrawalsByAccount(ctx context.Context, db *bun.DB, accountID int64, limit, offset int) ([]*models.WithdrawalRequest, error) {
	var requests []*models.WithdrawalRequest
	err := db.NewSelect().Model(&requests).
		Where("account_id = ?", accountID).
		Order("requested_at DESC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func GetWithdrawalsByStatus(ctx context.Context, db *bun.DB, status string, limit, offset int) ([]*models.WithdrawalRequest, error) {
	var requests []*models.WithdrawalRequest
	err := db.NewSelect().Model(&requests).
		Where("status = ?", status).
		Order("requested_at ASC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

// AnonymizeWithdrawalsByAccount strips the display name off a deleted
// account's requests. The rows themselves stay for the payout audit trail.
func AnonymizeWithdrawalsByAccount(ctx context.Context, db *bun.DB, accountID int64) error {
	_, err := db.NewUpdate().
		Model((*models.WithdrawalRequest)(nil)).
		Set("account_name = ''").
		Where("account_id = ?", accountID).
		Exec(ctx)
	return err
}

// TransitionWithdrawal moves a request out of pending. The status guard keeps
// the transition terminal: a request already processed matches zero rows.
func TransitionWithdrawal(ctx context.Context, db *bun.DB, id string, status string) (*models.WithdrawalRequest, error) {
	now := time.Now()
	res, err := db.NewUpdate().
		Model((*models.WithdrawalRequest)(nil)).
		Set("status = ?", status).
		Set("processed_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", models.WithdrawalStatusPending).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStaleWrite
	}

	return FindWithdrawalByID(ctx, db, id)
}
