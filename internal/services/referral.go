package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cashreward/internal/datastore"
	"cashreward/internal/datastore/redis_store"
	"cashreward/internal/models"
	"cashreward/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// ReferralTier is a commission bracket keyed by how many accounts a referrer
// has brought in.
type ReferralTier struct {
	Name          string  `json:"name"`
	CommissionPct int     `json:"commission_pct"`
	MinReferrals  int     `json:"min_referrals"`
	NextAt        int     `json:"next_at,omitempty"`
	Progress      float64 `json:"progress"`
}

var referralTiers = []ReferralTier{
	{Name: "Starter", CommissionPct: 10, MinReferrals: 0},
	{Name: "Bronze", CommissionPct: 20, MinReferrals: 5},
	{Name: "Gold", CommissionPct: 30, MinReferrals: 20},
}

// TierFor maps a referral count onto its bracket. Progress runs toward the
// next bracket's floor and clamps to 1 on the top bracket.
func TierFor(count int) ReferralTier {
	if count < 0 {
		count = 0
	}

	tier := referralTiers[0]
	next := 0
	for i, candidate := range referralTiers {
		if count < candidate.MinReferrals {
			break
		}
		tier = candidate
		if i+1 < len(referralTiers) {
			next = referralTiers[i+1].MinReferrals
		} else {
			next = 0
		}
	}

	if next == 0 {
		tier.Progress = 1
		return tier
	}

	tier.NextAt = next
	span := next - tier.MinReferrals
	tier.Progress = float64(count-tier.MinReferrals) / float64(span)
	return tier
}

// referralCredits is the pair of ledger entries one redeemed code produces:
// the joining bonus for the redeemer and the matching reward for the inviter.
// Everything the redemption pays out flows through this pair, the weekly
// leaderboard bumps included.
func referralCredits(redeemerID, inviterID, bonus int64) []*models.CoinEntry {
	return []*models.CoinEntry{
		{AccountID: redeemerID, Coins: bonus, Action: ActionReferralInvitee()},
		{AccountID: inviterID, Coins: bonus, Action: ActionReferralInviter(redeemerID)},
	}
}

type ServiceReferral struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceBot    *ServiceBot
}

func NewServiceReferral(container *do.Injector) (*ServiceReferral, error) {
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

	return &ServiceReferral{container, db, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceBot}, nil
}

// ApplyReferralCode links the account to the code's owner and credits both
// sides. The link is write-once; the datastore's inviter_id guard backs the
// in-memory checks under concurrency.
func (service *ServiceReferral) ApplyReferralCode(ctx context.Context, account *models.Account, code string) (*ReferralTier, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errorx.Wrap(ErrInvalidReferralCode, errorx.Validation)
	}

	if account.InviterID != nil || account.ReferredByCode != nil {
		return nil, errorx.Wrap(ErrReferralAlreadyUsed, errorx.Invalid)
	}

	inviter, err := service.FindAccountByReferralCode(ctx, code)
	if err != nil {
		if datastore.IsNotFound(err) || errors.Is(err, redis.Nil) {
			return nil, errorx.Wrap(ErrInvalidReferralCode, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if inviter.ID == account.ID {
		return nil, errorx.Wrap(ErrSelfReferral, errorx.Invalid)
	}

	bonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_REFERRAL_BONUS, DEFAULT_REFERRAL_BONUS)
	entries := referralCredits(account.ID, inviter.ID, int64(bonus))

	err = datastore.RedeemReferral(ctx, service.postgresDB, account.ID, inviter.ID, code, int64(bonus), entries)
	if err != nil {
		if errors.Is(err, datastore.ErrStaleWrite) {
			return nil, errorx.Wrap(ErrReferralAlreadyUsed, errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyAccount(account.ID))
	_ = service.cache.Delete(ctx, DBKeyAccount(inviter.ID))
	_ = service.cache.Delete(ctx, DBKeyReferralTier(inviter.ID))

	// the transaction moved weekly_earnings on both rows; keep the live board
	// in step, best-effort
	for _, entry := range entries {
		if err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_WEEKLY, entry.AccountID, entry.Coins); err != nil {
			log.Printf("failed to bump weekly leaderboard for %d: %v\n", entry.AccountID, err)
		}
	}

	tier := TierFor(inviter.ReferralCount + 1)
	go service.notifyInviter(inviter.ID, tier)
	return &tier, nil
}

// notifyInviter tells the referrer a friend joined, at most once per hour so
// viral spikes don't flood their chat.
func (service *ServiceReferral) notifyInviter(inviterID int64, tier ReferralTier) {
	ctx := context.Background()

	last, err := redis_store.GetAccountLastNotify(ctx, service.redisDB, inviterID)
	if err == nil && time.Since(last) < time.Hour {
		return
	}

	if err := service.serviceBot.SendReferralMessage(inviterID, &tier); err != nil {
		log.Println("failed to notify inviter:", err)
		return
	}
	if err := redis_store.SetAccountLastNotify(ctx, service.redisDB, inviterID, time.Now()); err != nil {
		log.Println("failed to record inviter notify time:", err)
	}
}

func (service *ServiceReferral) FindAccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	callback := func() (*models.Account, error) {
		return datastore.FindAccountByReferralCode(ctx, service.readonlyPostgresDB, code)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyAccountByRefCode(code), CACHE_TTL_5_MINS, callback)
}

// GetTier reports the caller's current bracket from the live referral count.
func (service *ServiceReferral) GetTier(ctx context.Context, accountID int64) (*ReferralTier, error) {
	callback := func() (*ReferralTier, error) {
		count, err := datastore.CountReferralsByAccount(ctx, service.readonlyPostgresDB, accountID)
		if err != nil {
			return nil, err
		}
		tier := TierFor(count)
		return &tier, nil
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyReferralTier(accountID), CACHE_TTL_1_MIN, callback)
}

func (service *ServiceReferral) GetReferrals(ctx context.Context, accountID int64, page, limit int) ([]*models.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return datastore.GetReferralsByAccount(ctx, service.readonlyPostgresDB, accountID, limit, (page-1)*limit)
}
