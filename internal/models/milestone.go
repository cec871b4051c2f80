package models

// MilestoneTier is one rung of the lifetime-earnings ladder. Crossing a tier
// grants its bonuses exactly once; the top tier is a terminal cap.
type MilestoneTier struct {
	Threshold    int64  `json:"threshold"`
	SpinBonus    int    `json:"spin_bonus"`
	ScratchBonus int    `json:"scratch_bonus"`
	Message      string `json:"message"`
}

// MilestoneLadder is ordered by strictly increasing threshold. The 20k entry
// carries no bonus; once the cursor reaches it no further upgrade happens.
var MilestoneLadder = []MilestoneTier{
	{Threshold: 1000, SpinBonus: 1, ScratchBonus: 0, Message: "1k Coins Milestone: +1 Free Spin!"},
	{Threshold: 3000, SpinBonus: 1, ScratchBonus: 1, Message: "3k Coins Milestone: +1 Spin & +1 Scratch Card!"},
	{Threshold: 10000, SpinBonus: 3, ScratchBonus: 3, Message: "10k Coins Milestone: +3 Spins & +3 Scratch Cards!"},
	{Threshold: 20000},
}

const FirstMilestoneThreshold = 1000
