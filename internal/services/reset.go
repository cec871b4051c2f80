package services

import (
	"cashreward/internal/models"
	"cashreward/internal/pkg/daykey"
)

// resetDelta is the day-boundary rollover, applied lazily: the first operation
// touching an account on a new day carries it inside its own mutation, so a
// dedicated midnight job is never needed.
type resetDelta struct {
	AdCount     *int
	AdWatchDay  *string
	Challenge   *models.DailyChallenge
	FreeSpinDay *string
	SpinsDelta  int
}

func (d resetDelta) empty() bool {
	return d.AdCount == nil && d.Challenge == nil && d.FreeSpinDay == nil
}

// evalDailyReset compares each day-scoped field against today and returns the
// pieces that need rolling over. Evaluating twice on the same snapshot yields
// the same delta; evaluating on an already-rolled account yields nothing.
func evalDailyReset(account *models.Account, today daykey.DayKey) resetDelta {
	var delta resetDelta
	day := string(today)

	if account.LastAdWatchDay != day {
		zero := 0
		delta.AdCount = &zero
		delta.AdWatchDay = &day
	}

	if account.DailyChallenge == nil || account.DailyChallenge.Day != day {
		delta.Challenge = models.NewDailyChallenge(day)
	}

	if account.LastFreeSpinDay != day {
		delta.FreeSpinDay = &day
		delta.SpinsDelta = 1
	}

	return delta
}

// applyResetDelta folds the rollover into an in-memory snapshot so follow-up
// evaluation (quota checks, challenge progress) sees post-reset state.
func applyResetDelta(account *models.Account, delta resetDelta) {
	if delta.AdCount != nil {
		account.DailyAdCount = *delta.AdCount
		account.LastAdWatchDay = *delta.AdWatchDay
	}
	if delta.Challenge != nil {
		account.DailyChallenge = delta.Challenge
	}
	if delta.FreeSpinDay != nil {
		account.LastFreeSpinDay = *delta.FreeSpinDay
		account.SpinsAvailable += delta.SpinsDelta
	}
}

// foldReset merges the rollover into a pending mutation.
func foldReset(m *models.AccountMutation, delta resetDelta) {
	m.SetDailyAdCount = delta.AdCount
	m.SetLastAdWatchDay = delta.AdWatchDay
	if delta.Challenge != nil {
		m.SetDailyChallenge = delta.Challenge
	}
	m.SetLastFreeSpinDay = delta.FreeSpinDay
	m.SpinsDelta += delta.SpinsDelta
}
