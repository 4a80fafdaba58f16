package oauth

import (
	"fmt"
	"strings"

	gamelinkRedis "gamelink-suite/utils/database/redis"
)

type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// ParseStoreType accepts "memory" or "redis" in any case.
func ParseStoreType(s string) (StoreType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StoreTypeMemory):
		return StoreTypeMemory, nil
	case string(StoreTypeRedis):
		return StoreTypeRedis, nil
	default:
		return "", fmt.Errorf("unsupported token store type: %s", s)
	}
}

// NewTokenStore builds the configured TokenStore. redisManager is only
// required for StoreTypeRedis.
func NewTokenStore(storeType StoreType, redisManager *gamelinkRedis.GameLinkRedisManager, opts StoreOptions) (TokenStore, error) {
	switch storeType {
	case StoreTypeMemory:
		return NewMemoryTokenStore(opts), nil
	case StoreTypeRedis:
		if redisManager == nil || redisManager.Redis == nil {
			return nil, fmt.Errorf("redis token store requires a redis client")
		}
		return NewRedisTokenStore(redisManager, opts), nil
	default:
		return nil, fmt.Errorf("unsupported token store type: %s", storeType)
	}
}
