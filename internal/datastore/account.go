package datastore

import (
	"context"
	"database/sql"
	"errors"

	"cashreward/internal/models"

	"github.com/uptrace/bun"
)

// ErrStaleWrite is returned when a guarded account mutation matched zero rows,
// meaning the pre-state observed by the caller no longer holds.
var ErrStaleWrite = errors.New("account state changed since it was read")

func CreateTableAccount(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Account)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Account)(nil)).Index("index_account_referral_code").IfNotExists().Unique().Column("referral_code").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Account)(nil)).Index("index_account_inviter_id").IfNotExists().Column("inviter_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Account)(nil)).Index("index_account_weekly_earnings").IfNotExists().Column("weekly_earnings").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindAccountByID(ctx context.Context, db *bun.DB, accountID int64) (*models.Account, error) {
	var account models.Account
	err := db.NewSelect().Model(&account).Where("id = ?", accountID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func FindAccountByReferralCode(ctx context.Context, db *bun.DB, code string) (*models.Account, error) {
	var account models.Account
	err := db.NewSelect().Model(&account).Where("referral_code = ?", code).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func CheckReferralCodeExists(ctx context.Context, db *bun.DB, code string) (bool, error) {
	exists, err := db.NewSelect().Model((*models.Account)(nil)).Where("referral_code = ?", code).Exists(ctx)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func CreateAccount(ctx context.Context, db *bun.DB, account *models.Account) (*models.Account, error) {
	_, err := db.NewInsert().Model(account).Exec(ctx)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func UpdateAccountProfile(ctx context.Context, db *bun.DB, account *models.Account) (*models.Account, error) {
	_, err := db.NewUpdate().Model(account).
		Set("first_name = ?", account.FirstName).
		Set("last_name = ?", account.LastName).
		Set("username = ?", account.Username).
		Set("updated_at = current_timestamp").
		WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func SetAccountBlocked(ctx context.Context, db *bun.DB, accountID int64, blocked bool) error {
	_, err := db.NewUpdate().
		Model((*models.Account)(nil)).
		Set("is_blocked = ?", blocked).
		Set("updated_at = current_timestamp").
		Where("id = ?", accountID).
		Exec(ctx)
	return err
}

func DeleteAccount(ctx context.Context, db *bun.DB, accountID int64) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.CoinEntry)(nil)).Where("account_id = ?", accountID).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Account)(nil)).Where("id = ?", accountID).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}

func CountReferralsByAccount(ctx context.Context, db *bun.DB, accountID int64) (int, error) {
	count, err := db.NewSelect().Model((*models.Account)(nil)).Where("inviter_id = ?", accountID).Count(ctx)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func GetReferralsByAccount(ctx context.Context, db *bun.DB, accountID int64, limit, offset int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := db.NewSelect().Model(&accounts).
		Column("id", "first_name", "last_name", "username", "lifetime_earnings", "created_at").
		Where("inviter_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// CommitMutation applies a guarded account mutation and its coin entry in one
// transaction. The UPDATE's WHERE clause re-checks the guards; when it matches
// zero rows the caller raced another writer and gets ErrStaleWrite so it can
// re-read and retry.
func CommitMutation(ctx context.Context, db *bun.DB, m *models.AccountMutation) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("updated_at = current_timestamp").
			Where("id = ?", m.AccountID)

		if m.CoinDelta != 0 {
			q = q.Set("balance = balance + ?", m.CoinDelta).
				Set("lifetime_earnings = lifetime_earnings + ?", m.CoinDelta).
				Set("weekly_earnings = weekly_earnings + ?", m.CoinDelta)
		}
		if m.SpinsDelta != 0 {
			q = q.Set("spins_available = spins_available + ?", m.SpinsDelta)
		}
		if m.ScratchDelta != 0 {
			q = q.Set("scratch_cards_available = scratch_cards_available + ?", m.ScratchDelta)
		}
		if m.SetDailyAdCount != nil {
			q = q.Set("daily_ad_count = ?", *m.SetDailyAdCount)
		}
		if m.SetLastAdWatchDay != nil {
			q = q.Set("last_ad_watch_day = ?", *m.SetLastAdWatchDay)
		}
		if m.SetLastFreeSpinDay != nil {
			q = q.Set("last_free_spin_day = ?", *m.SetLastFreeSpinDay)
		}
		if m.SetDailyChallenge != nil {
			q = q.Set("daily_challenge = ?", m.SetDailyChallenge)
		}
		if m.SetCurrentStreak != nil {
			q = q.Set("current_streak = ?", *m.SetCurrentStreak)
		}
		if m.SetLastCheckInDay != nil {
			q = q.Set("last_check_in_day = ?", *m.SetLastCheckInDay)
		}
		if m.SetNextMilestone != nil {
			q = q.Set("next_milestone = ?", *m.SetNextMilestone)
		}

		if m.Guards.NextMilestone != nil {
			q = q.Where("next_milestone = ?", *m.Guards.NextMilestone)
		}
		if m.Guards.LastCheckInDayNot != nil {
			q = q.Where("last_check_in_day is distinct from ?", *m.Guards.LastCheckInDayNot)
		}
		if m.Guards.DailyAdCountBelow != nil {
			q = q.Where("daily_ad_count < ?", *m.Guards.DailyAdCountBelow)
		}
		if m.Guards.LastAdWatchDayNot != nil {
			q = q.Where("last_ad_watch_day is distinct from ?", *m.Guards.LastAdWatchDayNot)
		}
		if m.Guards.SpinsAvailable {
			q = q.Where("spins_available + ? >= 0", m.SpinsDelta)
		}
		if m.Guards.ScratchAvailable {
			q = q.Where("scratch_cards_available + ? >= 0", m.ScratchDelta)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStaleWrite
		}

		if m.Entry != nil {
			if err := insertCoinEntryTx(ctx, tx, m.Entry); err != nil {
				return err
			}
		}

		return nil
	})
}

// RedeemReferral writes the inviter link on the redeemer and credits both
// sides. The "inviter_id is null" guard makes the link write-once.
func RedeemReferral(ctx context.Context, db *bun.DB, redeemerID, inviterID int64, code string, bonus int64, entries []*models.CoinEntry) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("inviter_id = ?", inviterID).
			Set("referred_by_code = ?", code).
			Set("balance = balance + ?", bonus).
			Set("lifetime_earnings = lifetime_earnings + ?", bonus).
			Set("weekly_earnings = weekly_earnings + ?", bonus).
			Set("updated_at = current_timestamp").
			Where("id = ?", redeemerID).
			Where("inviter_id is null").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStaleWrite
		}

		if _, err := tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("referral_count = referral_count + 1").
			Set("balance = balance + ?", bonus).
			Set("lifetime_earnings = lifetime_earnings + ?", bonus).
			Set("weekly_earnings = weekly_earnings + ?", bonus).
			Set("updated_at = current_timestamp").
			Where("id = ?", inviterID).
			Exec(ctx); err != nil {
			return err
		}

		for _, entry := range entries {
			if err := insertCoinEntryTx(ctx, tx, entry); err != nil {
				return err
			}
		}

		return nil
	})
}

// DebitForWithdrawal takes the amount off the balance and records the pending
// request atomically. The balance guard keeps the ledger from going negative
// under concurrent requests.
func DebitForWithdrawal(ctx context.Context, db *bun.DB, request *models.WithdrawalRequest) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Account)(nil)).
			Set("balance = balance - ?", request.Amount).
			Set("updated_at = current_timestamp").
			Where("id = ?", request.AccountID).
			Where("balance >= ?", request.Amount).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStaleWrite
		}

		if _, err := tx.NewInsert().Model(request).Exec(ctx); err != nil {
			return err
		}

		return nil
	})
}

// RefundWithdrawal returns a rejected request's amount to the balance.
func RefundWithdrawal(ctx context.Context, db *bun.DB, accountID int64, amount int64) error {
	_, err := db.NewUpdate().
		Model((*models.Account)(nil)).
		Set("balance = balance + ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", accountID).
		Exec(ctx)
	return err
}

// ResetWeeklyEarnings zeroes every account's weekly counter. Ran by the cron
// entrypoint at the start of each week.
func ResetWeeklyEarnings(ctx context.Context, db *bun.DB) (int64, error) {
	res, err := db.NewUpdate().
		Model((*models.Account)(nil)).
		Set("weekly_earnings = 0").
		Where("weekly_earnings <> 0").
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func GetWeeklyTopAccounts(ctx context.Context, db *bun.DB, limit int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := db.NewSelect().Model(&accounts).
		Column("id", "username", "first_name", "weekly_earnings").
		Where("is_blocked = false").
		Order("weekly_earnings DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// IsNotFound reports whether err is the driver's empty-result error.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
