package services

import (
	"testing"

	"cashreward/internal/models"
)

func TestEvalDailyReset(t *testing.T) {
	today := testClock.Today()

	t.Run("stale account rolls everything", func(t *testing.T) {
		account := &models.Account{
			DailyAdCount:    7,
			LastAdWatchDay:  "2026-08-27",
			LastFreeSpinDay: "2026-08-27",
			DailyChallenge:  &models.DailyChallenge{Day: "2026-08-27", AdsWatched: 3, Claimed: true},
		}

		delta := evalDailyReset(account, today)
		if delta.empty() {
			t.Fatal("expected a non-empty delta")
		}
		if delta.AdCount == nil || *delta.AdCount != 0 {
			t.Errorf("AdCount = %v, want 0", delta.AdCount)
		}
		if delta.Challenge == nil || delta.Challenge.Day != string(today) || delta.Challenge.AdsWatched != 0 || delta.Challenge.Claimed {
			t.Errorf("Challenge = %+v, want fresh for %s", delta.Challenge, today)
		}
		if delta.FreeSpinDay == nil || delta.SpinsDelta != 1 {
			t.Errorf("FreeSpinDay = %v SpinsDelta = %d, want today and 1", delta.FreeSpinDay, delta.SpinsDelta)
		}
	})

	t.Run("current account yields nothing", func(t *testing.T) {
		account := &models.Account{
			LastAdWatchDay:  string(today),
			LastFreeSpinDay: string(today),
			DailyChallenge:  models.NewDailyChallenge(string(today)),
		}

		if delta := evalDailyReset(account, today); !delta.empty() {
			t.Fatalf("delta = %+v, want empty", delta)
		}
	})

	t.Run("nil challenge counts as stale", func(t *testing.T) {
		account := &models.Account{
			LastAdWatchDay:  string(today),
			LastFreeSpinDay: string(today),
		}

		delta := evalDailyReset(account, today)
		if delta.Challenge == nil {
			t.Fatal("expected a fresh challenge")
		}
		if delta.AdCount != nil || delta.FreeSpinDay != nil {
			t.Errorf("unrelated fields rolled: %+v", delta)
		}
	})
}

func TestApplyResetDeltaThenReEval(t *testing.T) {
	today := testClock.Today()
	account := &models.Account{
		DailyAdCount:    10,
		LastAdWatchDay:  "2026-08-20",
		LastFreeSpinDay: "2026-08-20",
		SpinsAvailable:  2,
	}

	applyResetDelta(account, evalDailyReset(account, today))

	if account.DailyAdCount != 0 {
		t.Errorf("DailyAdCount = %d, want 0", account.DailyAdCount)
	}
	if account.SpinsAvailable != 3 {
		t.Errorf("SpinsAvailable = %d, want 3", account.SpinsAvailable)
	}
	if account.DailyChallenge == nil || account.DailyChallenge.Day != string(today) {
		t.Errorf("DailyChallenge = %+v, want fresh for %s", account.DailyChallenge, today)
	}

	// applying once must make the next evaluation a no-op
	if delta := evalDailyReset(account, today); !delta.empty() {
		t.Fatalf("delta after apply = %+v, want empty", delta)
	}
}

func TestFoldReset(t *testing.T) {
	today := testClock.Today()
	account := &models.Account{
		DailyAdCount:    4,
		LastAdWatchDay:  "2026-08-27",
		LastFreeSpinDay: "2026-08-27",
		DailyChallenge:  &models.DailyChallenge{Day: "2026-08-27", AdsWatched: 2},
	}

	m := &models.AccountMutation{AccountID: 1, SpinsDelta: -1}
	foldReset(m, evalDailyReset(account, today))

	if m.SetDailyAdCount == nil || *m.SetDailyAdCount != 0 {
		t.Errorf("SetDailyAdCount = %v, want 0", m.SetDailyAdCount)
	}
	if m.SetLastAdWatchDay == nil || *m.SetLastAdWatchDay != string(today) {
		t.Errorf("SetLastAdWatchDay = %v, want %s", m.SetLastAdWatchDay, today)
	}
	if m.SetDailyChallenge == nil || m.SetDailyChallenge.Day != string(today) {
		t.Errorf("SetDailyChallenge = %+v, want fresh for %s", m.SetDailyChallenge, today)
	}
	// consuming the spin the rollover itself granted nets out to zero
	if m.SpinsDelta != 0 {
		t.Errorf("SpinsDelta = %d, want 0", m.SpinsDelta)
	}
}
