package limiter

import (
	"context"
	"errors"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
)

var ErrRateLimited = errors.New("too many requests")

type Limiter struct {
	instance *redis_rate.Limiter
}

func NewLimiter(client redis.UniversalClient) (*Limiter, error) {
	return &Limiter{redis_rate.NewLimiter(client)}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.instance.Allow(ctx, key, limit)
	if err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	if res.Allowed <= 0 {
		return errorx.Wrap(ErrRateLimited, errorx.RateLimiting)
	}

	return nil
}
