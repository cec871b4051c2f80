package services

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"strings"
	"time"

	"cashreward/internal/datastore"
	"cashreward/internal/datastore/redis_store"
	"cashreward/internal/models"
	"cashreward/internal/pkg/caching"
	"cashreward/internal/pkg/daykey"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceAccount struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	rs                 *redsync.Redsync
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	serviceConfig *ServiceConfig
	serviceReward *ServiceReward
	serviceBot    *ServiceBot
	clock         daykey.Clock
}

func NewServiceAccount(container *do.Injector) (*ServiceAccount, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
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

	serviceReward, err := do.Invoke[*ServiceReward](container)
	if err != nil {
		return nil, err
	}

	serviceBot, err := do.Invoke[*ServiceBot](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAccount{container, db, rs, postgresDB, readonlyPostgresDB, cache, readonlyCache, serviceConfig, serviceReward, serviceBot, daykey.SystemClock{}}, nil
}

// FindOrCreateAccount resolves the authenticated identity to an account,
// bootstrapping one with the signup defaults on first contact and keeping the
// stored display profile in sync afterwards.
func (service *ServiceAccount) FindOrCreateAccount(ctx context.Context, auth *models.AccountFromAuth) (*models.Account, error) {
	if auth == nil {
		return nil, errors.New("auth is nil")
	}

	account, _ := service.FindAccountByID(ctx, auth.ID)
	if account != nil {
		if account.Username != strings.ToLower(auth.Username) ||
			account.FirstName != auth.FirstName ||
			account.LastName != auth.LastName {
			account.Username = strings.ToLower(auth.Username)
			account.FirstName = auth.FirstName
			account.LastName = auth.LastName
			if _, err := datastore.UpdateAccountProfile(ctx, service.postgresDB, account); err != nil {
				log.Println("failed to sync account profile:", err)
			}
			_ = service.cache.Delete(ctx, DBKeyAccount(account.ID))
		}
		return account, nil
	}

	code, err := service.generateReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	signingBonus, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_SIGNING_BONUS, DEFAULT_SIGNING_BONUS)

	now := time.Now()
	today := string(service.clock.Today())
	newAccount := &models.Account{
		ID:                    auth.ID,
		FirstName:             auth.FirstName,
		LastName:              auth.LastName,
		Username:              strings.ToLower(auth.Username),
		CreatedAt:             now,
		UpdatedAt:             now,
		Balance:               int64(signingBonus),
		LifetimeEarnings:      int64(signingBonus),
		WeeklyEarnings:        int64(signingBonus),
		NextMilestone:         models.FirstMilestoneThreshold,
		SpinsAvailable:        DEFAULT_SPINS_ON_SIGNUP,
		ScratchCardsAvailable: DEFAULT_SCRATCH_ON_SIGNUP,
		LastFreeSpinDay:       today,
		LastAdWatchDay:        today,
		DailyChallenge:        models.NewDailyChallenge(today),
		ReferralCode:          &code,
	}

	log.Println("Create new account:", "id:", newAccount.ID, "username:", newAccount.Username)
	account, err = datastore.CreateAccount(ctx, service.postgresDB, newAccount)
	if err != nil {
		return nil, err
	}
	account.IsNewAccount = true

	if signingBonus > 0 {
		entry := &models.CoinEntry{
			AccountID: account.ID,
			Coins:     int64(signingBonus),
			Action:    ActionSigningBonus(),
		}
		if err := datastore.InsertCoinEntry(ctx, service.postgresDB, entry); err != nil {
			log.Println("failed to record signing bonus entry:", err)
		}
		if err := redis_store.IncrLeaderboardScore(ctx, service.redisDB, LEADERBOARD_WEEKLY, account.ID, int64(signingBonus)); err != nil {
			log.Println("failed to seed weekly leaderboard score:", err)
		}
	}

	if err := redis_store.SaveDisplayProfile(ctx, service.redisDB, &redis_store.DisplayProfile{
		AccountID: account.ID,
		Username:  account.Username,
		FirstName: account.FirstName,
	}); err != nil {
		log.Println("failed to save display profile:", err)
	}

	go func() {
		if err := service.serviceBot.SendWelcomeMsg(account.ID); err != nil {
			log.Println(err)
		}
	}()

	return account, nil
}

func (service *ServiceAccount) FindAccountByID(ctx context.Context, accountID int64) (*models.Account, error) {
	callback := func() (*models.Account, error) {
		return datastore.FindAccountByID(ctx, service.readonlyPostgresDB, accountID)
	}
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyAccount(accountID), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceAccount) FindAccountByIDNoCache(ctx context.Context, accountID int64) (*models.Account, error) {
	return datastore.FindAccountByID(ctx, service.readonlyPostgresDB, accountID)
}

// Snapshot returns the account as the client should see it right now: any
// pending day-boundary rollover is committed first so quota counters, the
// challenge and the free spin are already current.
func (service *ServiceAccount) Snapshot(ctx context.Context, accountID int64) (*models.Account, error) {
	account, err := service.serviceReward.RollOver(ctx, accountID)
	if err == nil {
		return account, nil
	}
	if !NoRollOverNeeded(err) {
		return nil, err
	}

	return service.FindAccountByID(ctx, accountID)
}

// EstimateCurrency converts a coin amount to the payout currency using the
// configured exchange pair.
func (service *ServiceAccount) EstimateCurrency(ctx context.Context, coins int64) (float64, error) {
	pairCoins, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_COIN_VALUE_COINS, DEFAULT_COIN_VALUE_COINS)
	pairCurrency, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_COIN_VALUE_CURRENCY, DEFAULT_COIN_VALUE_CURRENCY)
	if pairCoins <= 0 {
		return 0, errorx.Wrap(errors.New("invalid coin value pair"), errorx.Service)
	}

	return float64(coins) * float64(pairCurrency) / float64(pairCoins), nil
}

// DeleteAccount removes the account, its ledger and its read-side projections.
func (service *ServiceAccount) DeleteAccount(ctx context.Context, accountID int64) error {
	mutex := service.rs.NewMutex(LockKeyAccount(accountID))
	if err := mutex.Lock(); err != nil {
		return errorx.Wrap(ErrTransactionConflict, errorx.Service)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	if err := datastore.DeleteAccount(ctx, service.postgresDB, accountID); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	// best effort, the requests themselves stay for the payout audit trail
	if err := datastore.AnonymizeWithdrawalsByAccount(ctx, service.postgresDB, accountID); err != nil {
		log.Println("failed to anonymize withdrawal history:", err)
	}

	if err := service.cache.Delete(ctx, DBKeyAccount(accountID)); err != nil {
		log.Println("failed to purge account cache:", err)
	}
	if err := redis_store.RemoveLeaderboardMember(ctx, service.redisDB, LEADERBOARD_WEEKLY, accountID); err != nil {
		log.Println("failed to remove leaderboard member:", err)
	}
	if err := redis_store.DeleteDisplayProfile(ctx, service.redisDB, accountID); err != nil {
		log.Println("failed to delete display profile:", err)
	}

	return nil
}

const referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateReferralCode draws short upper-case codes until one is free. The
// alphabet skips lookalike characters since users type these by hand.
func (service *ServiceAccount) generateReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < REFERRAL_CODE_GENERATE_RETRIES; i++ {
		code, err := randomReferralCode(REFERRAL_CODE_LENGTH)
		if err != nil {
			return "", err
		}

		exists, err := datastore.CheckReferralCodeExists(ctx, service.postgresDB, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", errors.New("could not allocate a referral code")
}

func randomReferralCode(length int) (string, error) {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeAlphabet))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(referralCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
