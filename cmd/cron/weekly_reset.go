package main

import (
	"context"
	"log"
	"time"

	"cashreward/internal/datastore"
	"cashreward/internal/datastore/redis_store"
	"cashreward/internal/models"
	"cashreward/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

// defaultWeeklyResetCron fires Monday 00:00 UTC when no schedule is
// configured.
const defaultWeeklyResetCron = "0 0 * * 1"

type WeeklyResetJob struct {
	Redis redis.UniversalClient
	Db    *bun.DB
}

func NewWeeklyResetJob(redisDB redis.UniversalClient, bunDB *bun.DB) *WeeklyResetJob {
	return &WeeklyResetJob{
		Redis: redisDB,
		Db:    bunDB,
	}
}

func (j *WeeklyResetJob) Start(cronRunner *cron.Cron) {
	schedule := defaultWeeklyResetCron
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, "CRONJOB_TIME_WEEKLY_RESET")
	if err == nil && timeline != nil && timeline.Value != "" {
		schedule = timeline.Value
	}

	_, err = cronRunner.AddFunc(schedule, j.runScheduledTask)
	log.Println("Weekly reset cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", schedule, err)
	j.rebuildLeaderboard()
}

func (j *WeeklyResetJob) runScheduledTask() {
	ctx := context.Background()

	log.Println("Start weekly reset ...")
	affected, err := datastore.ResetWeeklyEarnings(ctx, j.Db)
	if err != nil {
		log.Println("weekly earnings reset failed:", err)
		return
	}

	if err := redis_store.ClearLeaderboard(ctx, j.Redis, services.LEADERBOARD_WEEKLY); err != nil {
		log.Println("weekly leaderboard clear failed:", err)
		return
	}

	log.Println("Weekly reset done, accounts affected:", affected)
}

// rebuildLeaderboard reloads the ZSET from postgres on startup so a redis
// flush never empties a live board mid-week. Only the top slice matters; no
// board ever renders past it.
func (j *WeeklyResetJob) rebuildLeaderboard() {
	ctx := context.Background()

	accounts, err := datastore.GetWeeklyTopAccounts(ctx, j.Db, 1000)
	if err != nil {
		log.Println(err)
		return
	}

	for _, account := range accounts {
		if account.WeeklyEarnings <= 0 {
			continue
		}

		_, err := redis_store.SetLeaderboardScore(ctx, j.Redis, services.LEADERBOARD_WEEKLY, &models.LeaderboardItem{
			AccountID: account.ID,
			Score:     float64(account.WeeklyEarnings),
		})
		if err != nil {
			log.Println(err)
		}

		if err := redis_store.SaveDisplayProfile(ctx, j.Redis, &redis_store.DisplayProfile{
			AccountID: account.ID,
			Username:  account.Username,
			FirstName: account.FirstName,
		}); err != nil {
			log.Println(err)
		}
	}

	log.Println("Finished rebuilding weekly leaderboard, accounts:", len(accounts))
}
