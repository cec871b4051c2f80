package services

import (
	"context"
	"fmt"

	"cashreward/internal/datastore/redis_store"
	"cashreward/internal/models"
	"cashreward/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

type ServiceLeaderboard struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache

	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
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

	return &ServiceLeaderboard{container, db, cache, readonlyCache, serviceConfig}, nil
}

// GetWeeklyLeaderboard returns the current week's top earners plus the
// caller's own rank. Usernames on the public board are censored.
func (service *ServiceLeaderboard) GetWeeklyLeaderboard(ctx context.Context, account *models.Account) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, DEFAULT_LEADERBOARD_LIMIT)

	callback := func() (*models.LeaderboardResponse, error) {
		leaderboard, err := redis_store.GetLeaderboard(ctx, service.redisDB, LEADERBOARD_WEEKLY, limit)
		if err != nil {
			return nil, err
		}

		rank, err := redis_store.GetLeaderboardRank(ctx, service.redisDB, LEADERBOARD_WEEKLY, account.ID)

		score := float64(0)
		if err == redis.Nil {
			rank = -1
		} else {
			score, err = redis_store.GetLeaderboardScore(ctx, service.redisDB, LEADERBOARD_WEEKLY, account.ID)
		}

		if err != nil && err != redis.Nil {
			return nil, err
		}

		for _, item := range leaderboard {
			profile, _ := redis_store.GetDisplayProfile(ctx, service.redisDB, item.AccountID)
			if profile != nil {
				if profile.Username == "" {
					item.Username = censorUsername(profile.FirstName)
				} else {
					item.Username = censorUsername(profile.Username)
				}
			}
		}

		participants, err := redis_store.GetLeaderboardParticipantsCount(ctx, service.redisDB, LEADERBOARD_WEEKLY)
		if err != nil {
			return nil, err
		}

		response := &models.LeaderboardResponse{
			Leaderboard:  leaderboard,
			Participants: participants,
			Me: &models.LeaderboardItem{
				Username:  account.Username,
				AccountID: account.ID,
				Score:     score,
				Rank:      int(rank + 1),
			},
		}

		if account.Username == "" {
			response.Me.Username = fmt.Sprintf("%s %s", account.FirstName, account.LastName)
		}

		return response, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyWeeklyLeaderboard(account.ID, limit), CACHE_TTL_1_MIN, callback)
}

// ResetWeek clears the weekly board. Cached per-account responses are
// short-lived and age out on their own. Ran by the cron entrypoint on the
// week boundary.
func (service *ServiceLeaderboard) ResetWeek(ctx context.Context) error {
	return redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_WEEKLY)
}

func censorUsername(username string) string {
	// rune-wise: the fallback display name may be non-ASCII
	runes := []rune(username)
	if len(runes) < 3 {
		return username
	}

	return string(runes[:2]) + "*****" + string(runes[len(runes)-1])
}
