package services

import "testing"

func TestEvalMilestone(t *testing.T) {
	tests := []struct {
		name          string
		lifetimeAfter int64
		cursor        int
		wantThreshold int64
		wantCursor    int
	}{
		{"below cursor no-op", 950, 1000, 0, 1000},
		{"lands exactly on rung", 1000, 1000, 1000, 3000},
		{"crosses first rung", 1040, 1000, 1000, 3000},
		{"jump pays highest rung only", 11000, 1000, 10000, 20000},
		{"mid-ladder cursor honored", 11000, 10000, 10000, 20000},
		{"crossing terminal ends ladder", 25000, 20000, 0, 0},
		{"capped account never upgrades", 999999, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalMilestone(tt.lifetimeAfter, tt.cursor)
			if tt.wantThreshold == 0 {
				if got.Tier != nil {
					t.Fatalf("Tier = %+v, want nil", got.Tier)
				}
			} else {
				if got.Tier == nil {
					t.Fatal("Tier = nil, want a tier")
				}
				if got.Tier.Threshold != tt.wantThreshold {
					t.Errorf("Tier.Threshold = %d, want %d", got.Tier.Threshold, tt.wantThreshold)
				}
			}
			if got.NewCursor != tt.wantCursor {
				t.Errorf("NewCursor = %d, want %d", got.NewCursor, tt.wantCursor)
			}
		})
	}
}

func TestEvalMilestoneIsIdempotent(t *testing.T) {
	first := evalMilestone(1040, 1000)
	if first.Tier == nil {
		t.Fatal("expected an upgrade on the first evaluation")
	}

	// re-evaluating the same lifetime total against the advanced cursor must
	// not pay the same rung twice
	second := evalMilestone(1040, first.NewCursor)
	if second.Tier != nil {
		t.Fatalf("Tier = %+v on re-evaluation, want nil", second.Tier)
	}
	if second.NewCursor != first.NewCursor {
		t.Errorf("NewCursor = %d, want %d", second.NewCursor, first.NewCursor)
	}
}
