package services

import "testing"

func TestReferralCredits(t *testing.T) {
	entries := referralCredits(7, 3, 500)

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want one per side", len(entries))
	}
	if entries[0].AccountID != 7 || entries[1].AccountID != 3 {
		t.Errorf("accounts = %d/%d, want redeemer 7 and inviter 3", entries[0].AccountID, entries[1].AccountID)
	}
	for _, entry := range entries {
		if entry.Coins != 500 {
			t.Errorf("account %d credited %d, want the full bonus 500", entry.AccountID, entry.Coins)
		}
	}
	if entries[0].Action == entries[1].Action {
		t.Errorf("both sides share action %q, want distinct ledger keys", entries[0].Action)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		wantName     string
		wantPct      int
		wantNextAt   int
		wantProgress float64
	}{
		{"zero referrals", 0, "Starter", 10, 5, 0},
		{"last starter slot", 4, "Starter", 10, 5, 0.8},
		{"bronze floor", 5, "Bronze", 20, 20, 0},
		{"last bronze slot", 19, "Bronze", 20, 20, float64(14) / 15},
		{"gold floor", 20, "Gold", 30, 0, 1},
		{"deep into gold stays clamped", 100, "Gold", 30, 0, 1},
		{"negative count treated as zero", -3, "Starter", 10, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TierFor(tt.count)
			if got.Name != tt.wantName {
				t.Errorf("Name = %s, want %s", got.Name, tt.wantName)
			}
			if got.CommissionPct != tt.wantPct {
				t.Errorf("CommissionPct = %d, want %d", got.CommissionPct, tt.wantPct)
			}
			if got.NextAt != tt.wantNextAt {
				t.Errorf("NextAt = %d, want %d", got.NextAt, tt.wantNextAt)
			}
			if got.Progress != tt.wantProgress {
				t.Errorf("Progress = %v, want %v", got.Progress, tt.wantProgress)
			}
		})
	}
}
