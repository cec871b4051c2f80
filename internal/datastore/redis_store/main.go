package redis_store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"cashreward/internal/models"
)

func dbKeyLeaderboard(board string) string {
	return fmt.Sprintf("leaderboard-%s", board)
}

func dbKeyDisplayProfile(accountID int64) string {
	return fmt.Sprintf("account-%d-display", accountID)
}

func dbKeyAccountLastNotify(accountID int64) string {
	return fmt.Sprintf("account-%d-last-notify", accountID)
}

// DisplayProfile is the slim account projection kept in redis so leaderboard
// reads never touch postgres for names.
type DisplayProfile struct {
	AccountID int64  `msgpack:"id"`
	Username  string `msgpack:"username"`
	FirstName string `msgpack:"first_name"`
}

func SaveDisplayProfile(ctx context.Context, cmd redis.Cmdable, v *DisplayProfile) error {
	if v.AccountID == 0 {
		return errors.New("invalid display profile")
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyDisplayProfile(v.AccountID), b, 0).Err()
}

func GetDisplayProfile(ctx context.Context, cmd redis.Cmdable, accountID int64) (*DisplayProfile, error) {
	b, err := cmd.Get(ctx, dbKeyDisplayProfile(accountID)).Bytes()
	if err != nil {
		return nil, err
	}

	var v DisplayProfile
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, err
	}

	return &v, nil
}

func DeleteDisplayProfile(ctx context.Context, cmd redis.Cmdable, accountID int64) error {
	return cmd.Del(ctx, dbKeyDisplayProfile(accountID)).Err()
}

// IncrLeaderboardScore bumps an account's score on a board. Called after a
// coin credit commits, never before.
func IncrLeaderboardScore(ctx context.Context, cmd redis.Cmdable, board string, accountID int64, delta int64) error {
	return cmd.ZIncrBy(ctx, dbKeyLeaderboard(board), float64(delta), strconv.FormatInt(accountID, 10)).Err()
}

func SetLeaderboardScore(ctx context.Context, cmd redis.Cmdable, board string, v *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	err := cmd.ZAdd(ctx, dbKeyLeaderboard(board), redis.Z{
		Score:  v.Score,
		Member: v.AccountID,
	}).Err()
	if err != nil {
		return nil, err
	}

	return v, nil
}

func RemoveLeaderboardMember(ctx context.Context, cmd redis.Cmdable, board string, accountID int64) error {
	return cmd.ZRem(ctx, dbKeyLeaderboard(board), strconv.FormatInt(accountID, 10)).Err()
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, board string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(board)).Err()
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, board string, num int) ([]*models.LeaderboardItem, error) {
	items, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(board), 0, int64(num-1)).Result()
	if err != nil {
		return nil, err
	}

	var results []*models.LeaderboardItem
	for i, item := range items {
		id, _ := strconv.ParseInt(item.Member.(string), 10, 64)
		results = append(results, &models.LeaderboardItem{
			AccountID: id,
			Score:     item.Score,
			Rank:      i + 1,
		})
	}

	return results, nil
}

func GetLeaderboardRank(ctx context.Context, cmd redis.Cmdable, board string, accountID int64) (int64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyLeaderboard(board), strconv.FormatInt(accountID, 10)).Result()
	if err != nil {
		return -1, err
	}
	return rank, nil
}

func GetLeaderboardScore(ctx context.Context, cmd redis.Cmdable, board string, accountID int64) (float64, error) {
	score, err := cmd.ZScore(ctx, dbKeyLeaderboard(board), strconv.FormatInt(accountID, 10)).Result()
	if err != nil {
		return 0, err
	}
	return score, nil
}

func GetLeaderboardParticipantsCount(ctx context.Context, cmd redis.Cmdable, board string) (int64, error) {
	count, err := cmd.ZCard(ctx, dbKeyLeaderboard(board)).Result()
	if err != nil {
		return 0, err
	}
	return count, nil
}

func SetAccountLastNotify(ctx context.Context, cmd redis.Cmdable, accountID int64, lastNotify time.Time) error {
	return cmd.Set(ctx, dbKeyAccountLastNotify(accountID), lastNotify.Unix(), 0).Err()
}

func GetAccountLastNotify(ctx context.Context, cmd redis.Cmdable, accountID int64) (time.Time, error) {
	unix, err := cmd.Get(ctx, dbKeyAccountLastNotify(accountID)).Int64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}
