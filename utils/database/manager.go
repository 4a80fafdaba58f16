package database

import (
	"context"
	"database/sql"
	"errors"

	mongoManager "gamelink-suite/utils/database/mongo"
	redisManager "gamelink-suite/utils/database/redis"
)

type GameLinkDBManager struct {
	DB    *sql.DB
	Redis *redisManager.GameLinkRedisManager
	// Mongo is nil when the grant event log is disabled.
	Mongo *mongoManager.MongoDBManager
}

func NewGameLinkDBManager(db *sql.DB, redis *redisManager.GameLinkRedisManager, mongo *mongoManager.MongoDBManager) *GameLinkDBManager {
	return &GameLinkDBManager{
		DB:    db,
		Redis: redis,
		Mongo: mongo,
	}
}

// Ping checks every configured backend. Absent ones are left out of the result.
func (m *GameLinkDBManager) Ping(ctx context.Context) map[string]error {
	status := make(map[string]error, 3)
	if m.DB != nil {
		status["postgresql"] = m.DB.PingContext(ctx)
	}
	if m.Redis != nil && m.Redis.Redis != nil {
		status["redis"] = m.Redis.Redis.Ping(ctx).Err()
	}
	if m.Mongo != nil {
		status["mongodb"] = m.Mongo.Ping(ctx)
	}
	return status
}

func (m *GameLinkDBManager) Close(ctx context.Context) error {
	var errs []error
	if m.Mongo != nil {
		errs = append(errs, m.Mongo.Close(ctx))
	}
	if m.Redis != nil && m.Redis.Redis != nil {
		errs = append(errs, m.Redis.Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}
