package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Account struct {
	bun.BaseModel `bun:"table:account"`
	ID            int64     `bun:"id,pk" json:"id"`
	FirstName     string    `bun:"first_name" json:"first_name"`
	LastName      string    `bun:"last_name" json:"last_name"`
	Username      string    `bun:"username" json:"username"`
	IsBlocked     bool      `bun:"is_blocked" json:"-"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`

	Balance          int64 `bun:"balance" json:"balance"`
	LifetimeEarnings int64 `bun:"lifetime_earnings" json:"lifetime_earnings"`
	WeeklyEarnings   int64 `bun:"weekly_earnings" json:"weekly_earnings"`

	NextMilestone int `bun:"next_milestone" json:"next_milestone"`

	CurrentStreak  int    `bun:"current_streak" json:"current_streak"`
	LastCheckInDay string `bun:"last_check_in_day" json:"last_check_in_day"`

	DailyAdCount   int    `bun:"daily_ad_count" json:"daily_ad_count"`
	LastAdWatchDay string `bun:"last_ad_watch_day" json:"last_ad_watch_day"`

	SpinsAvailable        int    `bun:"spins_available" json:"spins_available"`
	ScratchCardsAvailable int    `bun:"scratch_cards_available" json:"scratch_cards_available"`
	LastFreeSpinDay       string `bun:"last_free_spin_day" json:"last_free_spin_day"`

	DailyChallenge *DailyChallenge `bun:"daily_challenge,type:jsonb" json:"daily_challenge"`

	ReferralCode   *string `bun:"referral_code" json:"referral_code"`
	ReferredByCode *string `bun:"referred_by_code" json:"referred_by_code"`
	InviterID      *int64  `bun:"inviter_id" json:"inviter_id"`
	ReferralCount  int     `bun:"referral_count" json:"referral_count"`

	IsNewAccount bool `bun:"-" json:"is_new_account"`
}

// DailyChallenge is scoped to a single reward day; AdsWatched saturates at the
// configured target and Claimed is write-once true.
type DailyChallenge struct {
	Day        string `json:"day"`
	AdsWatched int    `json:"ads_watched"`
	Claimed    bool   `json:"claimed"`
}

func NewDailyChallenge(day string) *DailyChallenge {
	return &DailyChallenge{Day: day}
}

// AccountFromAuth only use in middleware
type AccountFromAuth struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	IsBot     bool   `json:"is_bot"`
	IsPremium bool   `json:"is_premium"`
}
