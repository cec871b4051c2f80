package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrAlreadyClaimed = errors.New("reward already claimed")
var ErrQuotaExceeded = errors.New("daily quota exceeded")
var ErrInsufficientBalance = errors.New("insufficient balance")
var ErrBelowMinimum = errors.New("amount below the minimum withdrawal")
var ErrInvalidAmount = errors.New("invalid amount")
var ErrMissingPayoutDetail = errors.New("missing payout detail")
var ErrInvalidReferralCode = errors.New("invalid referral code")
var ErrSelfReferral = errors.New("cannot redeem own referral code")
var ErrReferralAlreadyUsed = errors.New("referral code already redeemed")
var ErrNoDrawsAvailable = errors.New("no draws available")
var ErrTransactionConflict = errors.New("account transaction conflict")
var ErrAccountLocked = errors.New("account is locked")
var ErrUnknownAdKind = errors.New("unknown ad kind")
var ErrAdNotVerified = errors.New("ad completion not verified")
var ErrChallengeIncomplete = errors.New("daily challenge not completed yet")
var ErrUnsupportedMethod = errors.New("unsupported payment method")

const (
	CONFIG_SERVER_MODE          = "SERVER_MODE"
	CONFIG_DAILY_AD_LIMIT       = "DAILY_AD_LIMIT"
	CONFIG_AD_BONUS_SPIN_EVERY  = "AD_BONUS_SPIN_EVERY"
	CONFIG_CHECKIN_BASE_REWARD  = "CHECKIN_BASE_REWARD"
	CONFIG_CHECKIN_STREAK_STEP  = "CHECKIN_STREAK_STEP"
	CONFIG_CHECKIN_STREAK_CAP   = "CHECKIN_STREAK_CAP"
	CONFIG_CHALLENGE_TARGET_ADS = "CHALLENGE_TARGET_ADS"
	CONFIG_CHALLENGE_BONUS      = "CHALLENGE_BONUS"
	CONFIG_REFERRAL_BONUS       = "REFERRAL_BONUS"
	CONFIG_SIGNING_BONUS        = "SIGNING_BONUS"
	CONFIG_MIN_WITHDRAWAL       = "MIN_WITHDRAWAL"
	CONFIG_PAYMENT_METHODS      = "PAYMENT_METHODS"
	CONFIG_COIN_VALUE_COINS     = "COIN_VALUE_COINS"
	CONFIG_COIN_VALUE_CURRENCY  = "COIN_VALUE_CURRENCY"
	CONFIG_LEADERBOARD_LIMIT    = "LEADERBOARD_LIMIT"
	CONFIG_TEXT_NEW_ACCOUNT     = "TEXT_NEW_ACCOUNT"
	CONFIG_TEXT_MILESTONE       = "TEXT_MILESTONE"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	LEADERBOARD_WEEKLY = "earnings_weekly"

	DEFAULT_DAILY_AD_LIMIT       = 10
	DEFAULT_AD_BONUS_SPIN_EVERY  = 3
	DEFAULT_CHECKIN_BASE_REWARD  = 10
	DEFAULT_CHECKIN_STREAK_STEP  = 5
	DEFAULT_CHECKIN_STREAK_CAP   = 0
	DEFAULT_CHALLENGE_TARGET_ADS = 3
	DEFAULT_CHALLENGE_BONUS      = 50
	DEFAULT_REFERRAL_BONUS       = 100
	DEFAULT_SIGNING_BONUS        = 50
	DEFAULT_MIN_WITHDRAWAL       = 10000
	DEFAULT_PAYMENT_METHODS      = "bKash,Nagad,Rocket"
	DEFAULT_COIN_VALUE_COINS     = 1000
	DEFAULT_COIN_VALUE_CURRENCY  = 3
	DEFAULT_LEADERBOARD_LIMIT    = 20

	DEFAULT_SPINS_ON_SIGNUP        = 1
	DEFAULT_SCRATCH_ON_SIGNUP      = 0
	REFERRAL_CODE_LENGTH           = 6
	REFERRAL_CODE_GENERATE_RETRIES = 5

	AD_KIND_INTERSTITIAL = "interstitial"
	AD_KIND_POPUP        = "popup"
	AD_KIND_IN_APP       = "inApp"
	AD_KIND_MINI_APP     = "miniApp"

	MUTATION_MAX_RETRIES = 3

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour
	CACHE_TTL_1_DAY      = 24 * time.Hour

	AD_CLAIM_RATE_LIMIT_PER_MINUTE = 30
)

func LockKeyAccount(accountID int64) string {
	return fmt.Sprintf("lock:account:%d", accountID)
}

func LockKeyWithdrawal(requestID string) string {
	return fmt.Sprintf("lock:withdrawal:%s", requestID)
}

// db
func DBKeyAccount(accountID int64) string {
	return fmt.Sprintf("account:%d", accountID)
}

func DBKeyAccountByRefCode(code string) string {
	return fmt.Sprintf("account:ref-code:%s", strings.ToUpper(code))
}

func DBKeyReferralTier(accountID int64) string {
	return fmt.Sprintf("referral:tier:%d", accountID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyWeeklyLeaderboard(accountID int64, limit int) string {
	return fmt.Sprintf("leaderboard:weekly:%d:%d", accountID, limit)
}

func DBKeyWithdrawalHistory(accountID int64, page, limit int) string {
	return fmt.Sprintf("withdrawals:%d:%d:%d", accountID, page, limit)
}

// Coin entry action keys. Day-scoped keys make the ledger's unique
// (account_id, action) index enforce once-per-day; draw keys carry the draw id
// so retried requests cannot double-credit.
func ActionCheckIn(day string) string {
	return fmt.Sprintf("checkin:%s", day)
}

func ActionAdReward(day string, n int) string {
	return fmt.Sprintf("ad:%s:%d", day, n)
}

func ActionSpin(drawID string) string {
	return fmt.Sprintf("spin:%s", drawID)
}

func ActionScratch(drawID string) string {
	return fmt.Sprintf("scratch:%s", drawID)
}

func ActionChallenge(day string) string {
	return fmt.Sprintf("challenge:%s", day)
}

func ActionReferralInviter(inviteeID int64) string {
	return fmt.Sprintf("referral:invited:%d", inviteeID)
}

func ActionReferralInvitee() string {
	return "referral:redeemed"
}

func ActionSigningBonus() string {
	return "signing-bonus"
}

func RateKeyAdClaim(accountID int64) string {
	return fmt.Sprintf("rate:ad-claim:%d", accountID)
}
