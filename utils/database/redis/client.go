package redis

import (
	"context"
	"fmt"
	"gamelink-suite/config"
	gamelinkLogger "gamelink-suite/utils/logger"

	"github.com/redis/go-redis/v9"
)

type GameLinkRedisManager struct {
	Redis *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) *GameLinkRedisManager {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		gamelinkLogger.Errorf("Failed to connect to Redis: %v", err)
	}
	return &GameLinkRedisManager{
		Redis: client,
	}
}

func NewRedisManager(client *redis.Client) *GameLinkRedisManager {
	return &GameLinkRedisManager{Redis: client}
}

func (r *GameLinkRedisManager) Close() error {
	return r.Redis.Close()
}
