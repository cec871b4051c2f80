package services

import (
	"context"
	"strconv"
	"strings"

	"cashreward/internal/datastore"
	"cashreward/internal/models"
	"cashreward/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceConfig struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
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

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, db, postgresDB, readonlyPostgresDB, cache, readOnlyCache}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	callback := func() (int, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if err != nil {
			return defaultValue, err
		}

		intValue, err := strconv.Atoi(config.Value)
		if err != nil {
			return defaultValue, err
		}

		return intValue, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

// SetConfig overwrites a hot-config value and drops the cached copy so the
// new value takes effect within one cache window everywhere else.
func (service *ServiceConfig) SetConfig(ctx context.Context, key, value string) (*models.Config, error) {
	config, err := datastore.EditConfig(ctx, service.postgresDB, &models.Config{Key: key, Value: value})
	if err != nil {
		return nil, err
	}

	_ = service.cache.Delete(ctx, DBKeyConfig(key))
	return config, nil
}

// GetListConfig splits a comma separated value, trimming whitespace around
// each element. Used for the payment method allowlist.
func (service *ServiceConfig) GetListConfig(ctx context.Context, key string, defaultValue string) ([]string, error) {
	raw, err := service.GetStringConfig(ctx, key, defaultValue)
	if err != nil {
		raw = defaultValue
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}

	return values, nil
}
