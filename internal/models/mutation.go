package models

// AccountMutation is the single shape every committed state transition takes.
// Nil set-fields are left untouched; Guards carry the pre-state the writer
// observed so the datastore can compare-and-set instead of blindly updating.
type AccountMutation struct {
	AccountID int64

	// CoinDelta credits balance, lifetime_earnings and weekly_earnings
	// together; lifetime never decreases so earns are always >= 0.
	CoinDelta int64

	SpinsDelta   int
	ScratchDelta int

	SetDailyAdCount   *int
	SetLastAdWatchDay *string

	SetLastFreeSpinDay *string

	SetDailyChallenge *DailyChallenge

	SetCurrentStreak  *int
	SetLastCheckInDay *string

	SetNextMilestone *int

	Guards MutationGuards

	// Entry, when present, is inserted in the same transaction as the account
	// update; its unique (account_id, action) key is the audit trail.
	Entry *CoinEntry
}

// MutationGuards are matched in the UPDATE's WHERE clause. A zero row count
// means another writer got there first and the whole mutation is discarded.
type MutationGuards struct {
	NextMilestone *int

	// LastCheckInDayNot rejects the write when the check-in day was already
	// advanced to this value by a concurrent claim.
	LastCheckInDayNot *string

	DailyAdCountBelow *int

	// LastAdWatchDayNot guards a folded ad-counter reset: it rejects the
	// write when a concurrent writer already rolled the counter to this day.
	LastAdWatchDayNot *string

	SpinsAvailable   bool
	ScratchAvailable bool
}
