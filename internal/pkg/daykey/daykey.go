// Package daykey resolves wall-clock time to the canonical reward-day key
// every daily reset rule compares against. All day keys are UTC calendar days.
package daykey

import "time"

const Layout = "2006-01-02"

// A DayKey is a calendar-day string such as "2026-08-28". Keys for the same
// day compare equal regardless of the time of day they were produced.
type DayKey = string

type Clock interface {
	Now() time.Time
	Today() DayKey
	Yesterday() DayKey
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (c SystemClock) Today() DayKey { return Of(c.Now()) }

func (c SystemClock) Yesterday() DayKey { return Of(c.Now().AddDate(0, 0, -1)) }

func Of(t time.Time) DayKey {
	return t.UTC().Format(Layout)
}

// FixedClock pins the clock for tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T.UTC() }

func (c FixedClock) Today() DayKey { return Of(c.T) }

func (c FixedClock) Yesterday() DayKey { return Of(c.T.AddDate(0, 0, -1)) }
