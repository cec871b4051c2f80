package daykey

import (
	"testing"
	"time"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want DayKey
	}{
		{"midnight utc", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "2026-08-28"},
		{"end of day utc", time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC), "2026-08-28"},
		{"offset zone normalizes to utc", time.Date(2026, 8, 29, 1, 30, 0, 0, time.FixedZone("UTC+6", 6*3600)), "2026-08-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.t); got != tt.want {
				t.Errorf("Of() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFixedClock(t *testing.T) {
	clock := FixedClock{T: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	if got := clock.Today(); got != "2026-03-01" {
		t.Errorf("Today() = %v", got)
	}
	if got := clock.Yesterday(); got != "2026-02-28" {
		t.Errorf("Yesterday() = %v", got)
	}
}
