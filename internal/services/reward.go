package services

import (
	"context"
	"errors"
	"log"

	"cashreward/internal/datastore"
	"cashreward/internal/datastore/redis_store"
	"cashreward/internal/interfaces"
	"cashreward/internal/models"
	"cashreward/internal/pkg/caching"
	"cashreward/internal/pkg/daykey"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/mroth/weightedrand/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// RewardOutcome is the committed result of one earning operation. Account is
// the post-commit snapshot; operation-specific fields are zero elsewhere.
type RewardOutcome struct {
	Account          *models.Account       `json:"account"`
	Coins            int64                 `json:"coins"`
	Streak           int                   `json:"streak,omitempty"`
	Prize            int64                 `json:"prize,omitempty"`
	BonusSpinGranted bool                  `json:"bonus_spin_granted,omitempty"`
	Milestone        *models.MilestoneTier `json:"milestone,omitempty"`
}

type ServiceReward struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	rs                 *redsync.Redsync
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceBot    *ServiceBot
	serviceAdNet  *ServiceAdNet
	limiter       interfaces.Limiter
	clock         daykey.Clock

	spinGacha    *ServiceGacha[int64]
	scratchGacha *ServiceGacha[int64]
}

func NewServiceReward(container *do.Injector) (*ServiceReward, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	serviceBot, err := do.Invoke[*ServiceBot](container)
	if err != nil {
		return nil, err
	}

	rateLimiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceAdNet, err := do.Invoke[*ServiceAdNet](container)
	if err != nil {
		return nil, err
	}

	spinGacha, err := NewServiceGacha(drawPrizeChoices())
	if err != nil {
		return nil, err
	}

	scratchGacha, err := NewServiceGacha(drawPrizeChoices())
	if err != nil {
		return nil, err
	}

	return &ServiceReward{
		container:          container,
		redisDB:            db,
		postgresDB:         postgresDB,
		readonlyPostgresDB: readonlyPostgresDB,
		cache:              cache,
		rs:                 rs,
		readonlyCache:      readonlyCache,
		serviceConfig:      serviceConfig,
		serviceBot:         serviceBot,
		serviceAdNet:       serviceAdNet,
		limiter:            rateLimiter,
		clock:              daykey.SystemClock{},
		spinGacha:          spinGacha,
		scratchGacha:       scratchGacha,
	}, nil
}

// drawPrizeChoices weights spin and scratch payouts toward the low end of the
// 150-200 coin band.
func drawPrizeChoices() []weightedrand.Choice[int64, int] {
	return []weightedrand.Choice[int64, int]{
		weightedrand.NewChoice(int64(150), 40),
		weightedrand.NewChoice(int64(160), 25),
		weightedrand.NewChoice(int64(175), 20),
		weightedrand.NewChoice(int64(190), 10),
		weightedrand.NewChoice(int64(200), 5),
	}
}

// apply serializes one earning operation per account. The redsync mutex keeps
// concurrent requests from the same account on one instance-spanning queue;
// the mutation guards catch anything the lock cannot see, and a guarded miss
// re-reads and retries before giving up.
func (service *ServiceReward) apply(ctx context.Context, accountID int64, build func(account *models.Account) (*models.AccountMutation, *RewardOutcome, error)) (*RewardOutcome, error) {
	mutex := service.rs.NewMutex(LockKeyAccount(accountID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrTransactionConflict, errorx.Service)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	for attempt := 0; attempt < MUTATION_MAX_RETRIES; attempt++ {
		account, err := datastore.FindAccountByID(ctx, service.postgresDB, accountID)
		if err != nil {
			if datastore.IsNotFound(err) {
				return nil, errorx.Wrap(err, errorx.NotExist)
			}
			return nil, errorx.Wrap(err, errorx.Service)
		}

		if account.IsBlocked {
			return nil, errorx.Wrap(ErrAccountLocked, errorx.Authn)
		}

		mutation, outcome, err := build(account)
		if err != nil {
			return nil, err
		}

		if err := datastore.CommitMutation(ctx, service.postgresDB, mutation); err != nil {
			if errors.Is(err, datastore.ErrStaleWrite) {
				continue
			}
			return nil, errorx.Wrap(err, errorx.Service)
		}

		service.afterCommit(ctx, account, mutation, outcome)
		return outcome, nil
	}

	return nil, errorx.Wrap(ErrTransactionConflict, errorx.Service)
}

// afterCommit refreshes the read side: the account cache entry, the weekly
// leaderboard score, and a milestone congratulation when one was crossed.
// These are best-effort; the committed transaction is the source of truth.
func (service *ServiceReward) afterCommit(ctx context.Context, account *models.Account, mutation *models.AccountMutation, outcome *RewardOutcome) {
	if err := service.cache.Delete(ctx, DBKeyAccount(account.ID)); err != nil {
		log.Printf("failed to invalidate account %d cache: %v\n", account.ID, err)
	}

	if mutation.CoinDelta > 0 {
		if err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_WEEKLY, account.ID, mutation.CoinDelta); err != nil {
			log.Printf("failed to bump weekly leaderboard for %d: %v\n", account.ID, err)
		}
	}

	if outcome.Milestone != nil && outcome.Milestone.Message != "" {
		go service.serviceBot.SendMilestoneMessage(account.ID, outcome.Milestone)
	}
}

// creditMutation starts a mutation that credits coins and applies any
// milestone upgrade the credit triggers. The next_milestone guard doubles as
// the optimistic-concurrency check for every mutation built on top.
func creditMutation(account *models.Account, coins int64, action string) (*models.AccountMutation, *RewardOutcome) {
	cursor := account.NextMilestone
	mutation := &models.AccountMutation{
		AccountID: account.ID,
		CoinDelta: coins,
		Guards:    models.MutationGuards{NextMilestone: &cursor},
	}
	outcome := &RewardOutcome{Coins: coins}

	if coins > 0 {
		mutation.Entry = &models.CoinEntry{
			AccountID: account.ID,
			Coins:     coins,
			Action:    action,
		}

		upgrade := evalMilestone(account.LifetimeEarnings+coins, account.NextMilestone)
		if upgrade.NewCursor != account.NextMilestone {
			newCursor := upgrade.NewCursor
			mutation.SetNextMilestone = &newCursor
		}
		if upgrade.Tier != nil {
			mutation.SpinsDelta += upgrade.Tier.SpinBonus
			mutation.ScratchDelta += upgrade.Tier.ScratchBonus
			outcome.Milestone = upgrade.Tier
		}
	}

	return mutation, outcome
}

// snapshotAfter folds a committed mutation into the pre-commit account so the
// response reflects what the row now holds, without a second read.
func snapshotAfter(account *models.Account, mutation *models.AccountMutation) *models.Account {
	after := *account
	after.Balance += mutation.CoinDelta
	after.LifetimeEarnings += mutation.CoinDelta
	after.WeeklyEarnings += mutation.CoinDelta
	after.SpinsAvailable += mutation.SpinsDelta
	after.ScratchCardsAvailable += mutation.ScratchDelta
	if mutation.SetDailyAdCount != nil {
		after.DailyAdCount = *mutation.SetDailyAdCount
	}
	if mutation.SetLastAdWatchDay != nil {
		after.LastAdWatchDay = *mutation.SetLastAdWatchDay
	}
	if mutation.SetLastFreeSpinDay != nil {
		after.LastFreeSpinDay = *mutation.SetLastFreeSpinDay
	}
	if mutation.SetDailyChallenge != nil {
		after.DailyChallenge = mutation.SetDailyChallenge
	}
	if mutation.SetCurrentStreak != nil {
		after.CurrentStreak = *mutation.SetCurrentStreak
	}
	if mutation.SetLastCheckInDay != nil {
		after.LastCheckInDay = *mutation.SetLastCheckInDay
	}
	if mutation.SetNextMilestone != nil {
		after.NextMilestone = *mutation.SetNextMilestone
	}
	return &after
}

// CheckIn claims today's daily reward. The reward grows with the streak and
// the streak survives only consecutive days.
func (service *ServiceReward) CheckIn(ctx context.Context, accountID int64) (*RewardOutcome, error) {
	base, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_BASE_REWARD, DEFAULT_CHECKIN_BASE_REWARD)
	step, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_STREAK_STEP, DEFAULT_CHECKIN_STREAK_STEP)
	cap, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_STREAK_CAP, DEFAULT_CHECKIN_STREAK_CAP)

	return service.apply(ctx, accountID, func(account *models.Account) (*models.AccountMutation, *RewardOutcome, error) {
		result, err := evalCheckIn(account, service.clock, base, step, cap)
		if err != nil {
			return nil, nil, errorx.Wrap(err, errorx.Invalid)
		}

		today := string(service.clock.Today())
		mutation, outcome := creditMutation(account, result.Reward, ActionCheckIn(today))
		mutation.SetCurrentStreak = &result.Streak
		mutation.SetLastCheckInDay = &today
		mutation.Guards.LastCheckInDayNot = &today
		foldReset(mutation, evalDailyReset(account, service.clock.Today()))

		outcome.Streak = result.Streak
		outcome.Account = snapshotAfter(account, mutation)
		return mutation, outcome, nil
	})
}

// adRewardCoins maps an ad placement kind to its payout. In-app ads pay
// nothing but still advance the daily counters.
func adRewardCoins(kind string) (int64, error) {
	switch kind {
	case AD_KIND_INTERSTITIAL, AD_KIND_POPUP:
		return 50, nil
	case AD_KIND_IN_APP:
		return 0, nil
	case AD_KIND_MINI_APP:
		return 100, nil
	default:
		return 0, ErrUnknownAdKind
	}
}

type adClaimResult struct {
	Count     int
	BonusSpin bool
	Challenge models.DailyChallenge
}

// evalAdClaim decides the counter transition for one verified ad view on a
// snapshot that already carries today's rollover. A claim past the daily
// limit is rejected without touching anything; every bonusEvery-th claim of
// the day carries a bonus spin.
func evalAdClaim(account *models.Account, limit, bonusEvery, target int) (adClaimResult, error) {
	if account.DailyAdCount >= limit {
		return adClaimResult{}, ErrQuotaExceeded
	}

	count := account.DailyAdCount + 1

	// the challenge counter saturates at the target, it is not a tally
	challenge := *account.DailyChallenge
	if challenge.AdsWatched < target {
		challenge.AdsWatched++
	}

	return adClaimResult{
		Count:     count,
		BonusSpin: bonusEvery > 0 && count%bonusEvery == 0,
		Challenge: challenge,
	}, nil
}

// ClaimAdReward credits a completed ad view. Every claim advances the daily
// counter and the challenge progress; every n-th claim also grants a bonus
// spin.
func (service *ServiceReward) ClaimAdReward(ctx context.Context, accountID int64, kind string, viewToken string) (*RewardOutcome, error) {
	coins, err := adRewardCoins(kind)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	if err := service.limiter.Allow(ctx, RateKeyAdClaim(accountID), redis_rate.PerMinute(AD_CLAIM_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	if err := service.serviceAdNet.VerifyCompletion(ctx, accountID, kind, viewToken); err != nil {
		return nil, err
	}

	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DAILY_AD_LIMIT, DEFAULT_DAILY_AD_LIMIT)
	bonusEvery, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_AD_BONUS_SPIN_EVERY, DEFAULT_AD_BONUS_SPIN_EVERY)
	target, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHALLENGE_TARGET_ADS, DEFAULT_CHALLENGE_TARGET_ADS)

	return service.apply(ctx, accountID, func(account *models.Account) (*models.AccountMutation, *RewardOutcome, error) {
		pre := *account
		reset := evalDailyReset(account, service.clock.Today())
		applyResetDelta(account, reset)

		result, err := evalAdClaim(account, limit, bonusEvery, target)
		if err != nil {
			return nil, nil, errorx.Wrap(err, errorx.RateLimiting)
		}

		today := string(service.clock.Today())

		mutation, outcome := creditMutation(account, coins, ActionAdReward(today, result.Count))
		mutation.SetDailyAdCount = &result.Count
		mutation.SetLastAdWatchDay = &today
		if reset.AdCount != nil {
			mutation.Guards.LastAdWatchDayNot = &today
		} else {
			mutation.Guards.DailyAdCountBelow = &limit
		}
		mutation.SetDailyChallenge = &result.Challenge

		if reset.FreeSpinDay != nil {
			mutation.SetLastFreeSpinDay = reset.FreeSpinDay
			mutation.SpinsDelta += reset.SpinsDelta
		}

		if result.BonusSpin {
			mutation.SpinsDelta++
			outcome.BonusSpinGranted = true
		}

		outcome.Account = snapshotAfter(&pre, mutation)
		return mutation, outcome, nil
	})
}

// Spin consumes one spin and credits the drawn prize.
func (service *ServiceReward) Spin(ctx context.Context, accountID int64) (*RewardOutcome, error) {
	return service.draw(ctx, accountID, service.spinGacha, ActionSpin, true)
}

// Scratch consumes one scratch card and credits the drawn prize.
func (service *ServiceReward) Scratch(ctx context.Context, accountID int64) (*RewardOutcome, error) {
	return service.draw(ctx, accountID, service.scratchGacha, ActionScratch, false)
}

func (service *ServiceReward) draw(ctx context.Context, accountID int64, gacha *ServiceGacha[int64], action func(string) string, spin bool) (*RewardOutcome, error) {
	return service.apply(ctx, accountID, func(account *models.Account) (*models.AccountMutation, *RewardOutcome, error) {
		pre := *account
		reset := evalDailyReset(account, service.clock.Today())
		applyResetDelta(account, reset)

		available := account.ScratchCardsAvailable
		if spin {
			available = account.SpinsAvailable
		}
		if available <= 0 {
			return nil, nil, errorx.Wrap(ErrNoDrawsAvailable, errorx.Invalid)
		}

		prize := gacha.Pick()
		mutation, outcome := creditMutation(account, prize, action(uuid.NewString()))
		if spin {
			mutation.SpinsDelta--
			mutation.Guards.SpinsAvailable = true
		} else {
			mutation.ScratchDelta--
			mutation.Guards.ScratchAvailable = true
		}
		foldReset(mutation, reset)

		outcome.Prize = prize
		outcome.Account = snapshotAfter(&pre, mutation)
		return mutation, outcome, nil
	})
}

// ClaimChallenge pays the daily challenge bonus once the ad target is met.
func (service *ServiceReward) ClaimChallenge(ctx context.Context, accountID int64) (*RewardOutcome, error) {
	target, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHALLENGE_TARGET_ADS, DEFAULT_CHALLENGE_TARGET_ADS)
	bonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHALLENGE_BONUS, DEFAULT_CHALLENGE_BONUS)

	return service.apply(ctx, accountID, func(account *models.Account) (*models.AccountMutation, *RewardOutcome, error) {
		pre := *account
		reset := evalDailyReset(account, service.clock.Today())
		applyResetDelta(account, reset)

		challenge := *account.DailyChallenge
		if challenge.Claimed {
			return nil, nil, errorx.Wrap(ErrAlreadyClaimed, errorx.Invalid)
		}
		if challenge.AdsWatched < target {
			return nil, nil, errorx.Wrap(ErrChallengeIncomplete, errorx.Invalid)
		}

		today := string(service.clock.Today())
		mutation, outcome := creditMutation(account, int64(bonus), ActionChallenge(today))
		foldReset(mutation, reset)
		challenge.Claimed = true
		mutation.SetDailyChallenge = &challenge

		outcome.Account = snapshotAfter(&pre, mutation)
		return mutation, outcome, nil
	})
}

// RollOver commits any pending day-boundary reset without crediting anything.
// Used by the profile read path so clients always see post-reset counters.
func (service *ServiceReward) RollOver(ctx context.Context, accountID int64) (*models.Account, error) {
	outcome, err := service.apply(ctx, accountID, func(account *models.Account) (*models.AccountMutation, *RewardOutcome, error) {
		reset := evalDailyReset(account, service.clock.Today())
		if reset.empty() {
			return nil, nil, errNoRollOver
		}

		cursor := account.NextMilestone
		mutation := &models.AccountMutation{
			AccountID: account.ID,
			Guards:    models.MutationGuards{NextMilestone: &cursor},
		}
		foldReset(mutation, reset)

		outcome := &RewardOutcome{Account: snapshotAfter(account, mutation)}
		return mutation, outcome, nil
	})
	if err != nil {
		return nil, err
	}

	return outcome.Account, nil
}

// History pages the account's earning ledger, newest first.
func (service *ServiceReward) History(ctx context.Context, accountID int64, page, limit int) ([]*models.CoinEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return datastore.GetCoinEntriesByAccount(ctx, service.readonlyPostgresDB, accountID, limit, (page-1)*limit)
}

var errNoRollOver = errors.New("nothing to roll over")

// NoRollOverNeeded reports whether err is the benign "already current" result
// of RollOver.
func NoRollOverNeeded(err error) bool {
	return errors.Is(err, errNoRollOver)
}
