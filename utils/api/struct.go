package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	LocalsUserID      = "userID"
	DefaultSessionTTL = 12 * time.Hour
)

type SessionClaims struct {
	UserID       string `json:"userId"`
	SessionToken string `json:"sessionToken"`
	jwt.RegisteredClaims
}

// SessionHandler issues and verifies session JWTs. RedisClient may be nil, in
// which case sessions are checked by signature and expiry only.
type SessionHandler struct {
	RedisClient    *redis.Client
	SessionSignKey string
	CheckRedis     bool
}

type GenericResponse[T any] struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	UpdatedData *T     `json:"updatedData,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
