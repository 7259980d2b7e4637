package kv

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/redis"
)

// Open builds the backend selected by cfg.Storage.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, state is lost on restart")
		return NewMemoryStore(), nil

	case config.StorageSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite storage opened", logger.String("path", cfg.SQLitePath))
		return s, nil

	case config.StorageRedis:
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
