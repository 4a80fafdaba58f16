package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gamelinkRedis "gamelink-suite/utils/database/redis"
	gamelinkLogger "gamelink-suite/utils/logger"
	"gamelink-suite/utils/oauth"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ====================== Response Functions ======================

func NewResponse[T any](status int, message string, data *T) *GenericResponse[T] {
	return &GenericResponse[T]{
		Status:      status,
		Message:     message,
		UpdatedData: data,
	}
}

func UpdatedDataResponse[T any](c *fiber.Ctx, status int, message string, data *T) error {
	return c.Status(status).JSON(NewResponse(status, message, data))
}

// ErrorJSON writes the {"error": message} body used by the protocol endpoints.
func ErrorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// FlowErrorResponse maps a flow error onto its HTTP status. Internal causes are
// logged and never sent to the client.
func FlowErrorResponse(c *fiber.Ctx, err error) error {
	fe := oauth.AsFlowError(err)
	if fe.Kind == oauth.KindInternal {
		gamelinkLogger.Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
	}
	return ErrorJSON(c, fe.StatusCode(), fe.Message)
}

// ====================== Error Response Functions ======================

// ErrorBadRequest returns a 400 Bad Request response
func ErrorBadRequest(c *fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusBadRequest, message, nil)
}

// ErrorNotFound returns a 404 Not Found response
func ErrorNotFound(c *fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusNotFound, message, nil)
}

// ErrorInternal returns a 500 Internal Server Error response
func ErrorInternal(c *fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusInternalServerError, message, nil)
}

// ErrorUnavailable returns a 503 Service Unavailable response
func ErrorUnavailable(c *fiber.Ctx, message string) error {
	return UpdatedDataResponse[string](c, fiber.StatusServiceUnavailable, message, nil)
}

// SuccessResponse returns a 200 OK response with optional data
func SuccessResponse[T any](c *fiber.Ctx, message string, data *T) error {
	return UpdatedDataResponse(c, fiber.StatusOK, message, data)
}

// ====================== Session Helper Functions ======================

var ErrEmptySessionSignKey = errors.New("user_system.session_sign_token must not be empty")

// NewSessionHandler refuses an empty key: HS256 with an empty secret lets
// anyone mint a session.
func NewSessionHandler(redisClient *redis.Client, sessionSignKey string, checkRedis bool) (*SessionHandler, error) {
	if strings.TrimSpace(sessionSignKey) == "" {
		return nil, ErrEmptySessionSignKey
	}
	return &SessionHandler{
		RedisClient:    redisClient,
		SessionSignKey: sessionSignKey,
		CheckRedis:     checkRedis && redisClient != nil,
	}, nil
}

func (s *SessionHandler) IssueSession(ctx context.Context, userID string) (string, error) {
	if s.SessionSignKey == "" {
		return "", ErrEmptySessionSignKey
	}
	sessionToken := uuid.NewString()
	ttl := DefaultSessionTTL
	if s.RedisClient != nil {
		err := s.RedisClient.Set(ctx, gamelinkRedis.BuildSessionKey(userID, sessionToken), "1", ttl).Err()
		if err != nil {
			return "", err
		}
	}
	now := time.Now()
	claims := SessionClaims{
		UserID:       userID,
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.SessionSignKey))
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *SessionHandler) VerifySessionToken(c *fiber.Ctx) error {
	auth := c.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return ErrorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	}
	if s.SessionSignKey == "" {
		gamelinkLogger.Errorf("session sign key is not configured")
		return ErrorJSON(c, fiber.StatusUnauthorized, "invalid token")
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.SessionSignKey), nil
	})
	if err != nil || !parsed.Valid {
		gamelinkLogger.Warnf("Invalid session token: %v", err)
		return ErrorJSON(c, fiber.StatusUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || claims.UserID == "" {
		gamelinkLogger.Warnf("Invalid session claims")
		return ErrorJSON(c, fiber.StatusUnauthorized, "invalid claims")
	}

	if s.CheckRedis {
		exists, err := s.RedisClient.Exists(c.UserContext(), gamelinkRedis.BuildSessionKey(claims.UserID, claims.SessionToken)).Result()
		if err != nil {
			gamelinkLogger.Errorf("Redis error checking session: %v", err)
			return ErrorJSON(c, fiber.StatusUnauthorized, "invalid session")
		}
		if exists == 0 {
			return ErrorJSON(c, fiber.StatusUnauthorized, "invalid session")
		}
	}

	c.Locals(LocalsUserID, claims.UserID)
	return c.Next()
}

func UserIDFromLocals(c *fiber.Ctx) string {
	userID, _ := c.Locals(LocalsUserID).(string)
	return userID
}
