package services

import (
	"errors"
	"testing"

	"cashreward/internal/models"
)

func TestAdRewardCoins(t *testing.T) {
	tests := []struct {
		kind    string
		want    int64
		wantErr error
	}{
		{AD_KIND_INTERSTITIAL, 50, nil},
		{AD_KIND_POPUP, 50, nil},
		{AD_KIND_IN_APP, 0, nil},
		{AD_KIND_MINI_APP, 100, nil},
		{"banner", 0, ErrUnknownAdKind},
		{"", 0, ErrUnknownAdKind},
	}

	for _, tt := range tests {
		t.Run("kind "+tt.kind, func(t *testing.T) {
			got, err := adRewardCoins(tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("adRewardCoins(%q) error = %v, want %v", tt.kind, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("adRewardCoins(%q) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestEvalAdClaim(t *testing.T) {
	today := string(testClock.Today())

	tests := []struct {
		name       string
		adCount    int
		adsWatched int
		limit      int
		bonusEvery int
		target     int
		wantCount  int
		wantBonus  bool
		wantAds    int
		wantErr    error
	}{
		{"first claim of the day", 0, 0, 20, 3, 10, 1, false, 1, nil},
		{"second claim no bonus", 1, 1, 20, 3, 10, 2, false, 2, nil},
		{"third claim grants the bonus spin", 2, 2, 20, 3, 10, 3, true, 3, nil},
		{"fourth claim no bonus", 3, 3, 20, 3, 10, 4, false, 4, nil},
		{"sixth claim grants again", 5, 5, 20, 3, 10, 6, true, 6, nil},
		{"ninth claim grants again", 8, 8, 20, 3, 10, 9, true, 9, nil},
		{"challenge saturates at the target", 12, 10, 20, 3, 10, 13, false, 10, nil},
		{"last claim under the limit", 19, 10, 20, 3, 10, 20, false, 10, nil},
		{"claim past the limit rejected", 20, 10, 20, 3, 10, 0, false, 0, ErrQuotaExceeded},
		{"bonus disabled", 2, 2, 20, 0, 10, 3, false, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &models.Account{
				ID:             7,
				DailyAdCount:   tt.adCount,
				LastAdWatchDay: today,
				DailyChallenge: &models.DailyChallenge{Day: today, AdsWatched: tt.adsWatched},
			}

			got, err := evalAdClaim(account, tt.limit, tt.bonusEvery, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if got.Count != 0 || got.BonusSpin {
					t.Errorf("rejected claim produced %+v, want nothing", got)
				}
				if account.DailyAdCount != tt.adCount || account.DailyChallenge.AdsWatched != tt.adsWatched {
					t.Error("rejected claim touched the counters")
				}
				return
			}
			if got.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", got.Count, tt.wantCount)
			}
			if got.BonusSpin != tt.wantBonus {
				t.Errorf("BonusSpin = %v, want %v", got.BonusSpin, tt.wantBonus)
			}
			if got.Challenge.AdsWatched != tt.wantAds {
				t.Errorf("Challenge.AdsWatched = %d, want %d", got.Challenge.AdsWatched, tt.wantAds)
			}
		})
	}
}

func TestCreditMutation(t *testing.T) {
	t.Run("plain credit", func(t *testing.T) {
		account := &models.Account{ID: 7, LifetimeEarnings: 500, NextMilestone: 1000}

		mutation, outcome := creditMutation(account, 50, "checkin:2026-08-28")
		if mutation.CoinDelta != 50 || outcome.Coins != 50 {
			t.Errorf("CoinDelta = %d Coins = %d, want 50", mutation.CoinDelta, outcome.Coins)
		}
		if mutation.Entry == nil || mutation.Entry.Action != "checkin:2026-08-28" {
			t.Errorf("Entry = %+v, want the action recorded", mutation.Entry)
		}
		if mutation.Guards.NextMilestone == nil || *mutation.Guards.NextMilestone != 1000 {
			t.Errorf("NextMilestone guard = %v, want 1000", mutation.Guards.NextMilestone)
		}
		if mutation.SetNextMilestone != nil || outcome.Milestone != nil {
			t.Errorf("unexpected milestone upgrade: cursor %v tier %+v", mutation.SetNextMilestone, outcome.Milestone)
		}
	})

	t.Run("credit crossing a milestone", func(t *testing.T) {
		account := &models.Account{ID: 7, LifetimeEarnings: 980, NextMilestone: 1000}

		mutation, outcome := creditMutation(account, 50, "ad:2026-08-28:4")
		if outcome.Milestone == nil || outcome.Milestone.Threshold != 1000 {
			t.Fatalf("Milestone = %+v, want the 1000 tier", outcome.Milestone)
		}
		if mutation.SetNextMilestone == nil || *mutation.SetNextMilestone != 3000 {
			t.Errorf("SetNextMilestone = %v, want 3000", mutation.SetNextMilestone)
		}
		if mutation.SpinsDelta != 1 || mutation.ScratchDelta != 0 {
			t.Errorf("bonus deltas = %d/%d, want 1/0", mutation.SpinsDelta, mutation.ScratchDelta)
		}
	})

	t.Run("zero credit writes no entry", func(t *testing.T) {
		account := &models.Account{ID: 7, LifetimeEarnings: 999, NextMilestone: 1000}

		mutation, outcome := creditMutation(account, 0, "ad:2026-08-28:5")
		if mutation.Entry != nil {
			t.Errorf("Entry = %+v, want nil", mutation.Entry)
		}
		if mutation.SetNextMilestone != nil || outcome.Milestone != nil {
			t.Error("zero credit must not move the milestone cursor")
		}
	})
}

func TestSnapshotAfter(t *testing.T) {
	today := string(testClock.Today())
	streak := 3
	cursor := 3000
	adCount := 1
	account := &models.Account{
		ID:               7,
		Balance:          900,
		LifetimeEarnings: 980,
		WeeklyEarnings:   200,
		SpinsAvailable:   1,
		NextMilestone:    1000,
		DailyAdCount:     9,
		CurrentStreak:    2,
	}
	mutation := &models.AccountMutation{
		AccountID:         7,
		CoinDelta:         50,
		SpinsDelta:        2,
		ScratchDelta:      1,
		SetDailyAdCount:   &adCount,
		SetLastAdWatchDay: &today,
		SetCurrentStreak:  &streak,
		SetLastCheckInDay: &today,
		SetNextMilestone:  &cursor,
		SetDailyChallenge: &models.DailyChallenge{Day: today, AdsWatched: 1},
	}

	after := snapshotAfter(account, mutation)

	if after.Balance != 950 || after.LifetimeEarnings != 1030 || after.WeeklyEarnings != 250 {
		t.Errorf("totals = %d/%d/%d, want 950/1030/250", after.Balance, after.LifetimeEarnings, after.WeeklyEarnings)
	}
	if after.SpinsAvailable != 3 || after.ScratchCardsAvailable != 1 {
		t.Errorf("draws = %d/%d, want 3/1", after.SpinsAvailable, after.ScratchCardsAvailable)
	}
	if after.DailyAdCount != 1 || after.LastAdWatchDay != today {
		t.Errorf("ad counters = %d/%s, want 1/%s", after.DailyAdCount, after.LastAdWatchDay, today)
	}
	if after.CurrentStreak != 3 || after.LastCheckInDay != today {
		t.Errorf("streak = %d/%s, want 3/%s", after.CurrentStreak, after.LastCheckInDay, today)
	}
	if after.NextMilestone != 3000 {
		t.Errorf("NextMilestone = %d, want 3000", after.NextMilestone)
	}
	if after.DailyChallenge == nil || after.DailyChallenge.AdsWatched != 1 {
		t.Errorf("DailyChallenge = %+v, want ads_watched 1", after.DailyChallenge)
	}

	// the input snapshot stays untouched
	if account.Balance != 900 || account.SpinsAvailable != 1 || account.CurrentStreak != 2 {
		t.Error("snapshotAfter mutated its input")
	}
}

func TestDrawPrizeChoices(t *testing.T) {
	choices := drawPrizeChoices()
	for _, c := range choices {
		if c.Item < 150 || c.Item > 200 {
			t.Errorf("prize %d outside the 150-200 band", c.Item)
		}
	}
}
