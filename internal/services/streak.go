package services

import (
	"cashreward/internal/models"
	"cashreward/internal/pkg/daykey"
)

type checkInResult struct {
	Streak int
	Reward int64
}

// evalCheckIn decides the streak transition and reward for a check-in claimed
// "today". The streak continues only off yesterday's claim; any gap snaps it
// back to 1. A second claim on the same day is rejected, never zero-credited.
func evalCheckIn(account *models.Account, clock daykey.Clock, base, step, cap int) (checkInResult, error) {
	today := string(clock.Today())

	if account.LastCheckInDay == today {
		return checkInResult{}, ErrAlreadyClaimed
	}

	streak := 1
	if account.LastCheckInDay == string(clock.Yesterday()) {
		streak = account.CurrentStreak + 1
	}

	rewardStreak := streak
	if cap > 0 && rewardStreak > cap {
		rewardStreak = cap
	}

	return checkInResult{
		Streak: streak,
		Reward: int64(base + step*rewardStreak),
	}, nil
}

// DisplayStreak is what the client shows before today's claim: the stored
// streak while it is still alive, zero once a day has been missed.
func DisplayStreak(account *models.Account, clock daykey.Clock) int {
	day := account.LastCheckInDay
	if day == string(clock.Today()) || day == string(clock.Yesterday()) {
		return account.CurrentStreak
	}
	return 0
}
