package api

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"gamelink-suite/utils/oauth"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSignKey = "unit-test-sign-key"

func mustSessionHandler(t *testing.T, key string, checkRedis bool) *SessionHandler {
	t.Helper()
	h, err := NewSessionHandler(nil, key, checkRedis)
	require.NoError(t, err)
	return h
}

func newSessionApp(h *SessionHandler) *fiber.App {
	app := fiber.New()
	app.Get("/me", h.VerifySessionToken, func(c *fiber.Ctx) error {
		return c.SendString(UserIDFromLocals(c))
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, target, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSessionHandler_RoundTrip(t *testing.T) {
	h := mustSessionHandler(t, testSignKey, true)
	assert.False(t, h.CheckRedis, "redis check needs a client")

	token, err := h.IssueSession(context.Background(), "user-42")
	require.NoError(t, err)
	app := newSessionApp(h)

	status, body := doGet(t, app, "/me", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-42", body)

	status, body = doGet(t, app, "/me", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-42", body)
}

func TestSessionHandler_Rejects(t *testing.T) {
	h := mustSessionHandler(t, testSignKey, false)
	app := newSessionApp(h)

	status, body := doGet(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Authentication required"}`, body)

	status, _ = doGet(t, app, "/me", "Bearer not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	other := mustSessionHandler(t, "another-key", false)
	forged, err := other.IssueSession(context.Background(), "user-42")
	require.NoError(t, err)
	status, _ = doGet(t, app, "/me", "Bearer "+forged)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID:       "user-42",
		SessionToken: "s",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(testSignKey))
	require.NoError(t, err)
	status, _ = doGet(t, app, "/me", "Bearer "+signed)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{SessionToken: "s"})
	signed, err = noUser.SignedString([]byte(testSignKey))
	require.NoError(t, err)
	status, body = doGet(t, app, "/me", "Bearer "+signed)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"invalid claims"}`, body)
}

func TestSessionHandler_EmptySignKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		h, err := NewSessionHandler(nil, key, false)
		assert.ErrorIs(t, err, ErrEmptySessionSignKey)
		assert.Nil(t, h)
	}

	// A handler built without the constructor still refuses tokens signed
	// with an empty secret.
	h := &SessionHandler{}
	_, err := h.IssueSession(context.Background(), "victim")
	assert.ErrorIs(t, err, ErrEmptySessionSignKey)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID:       "victim",
		SessionToken: "s",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte(""))
	require.NoError(t, err)
	status, body := doGet(t, newSessionApp(h), "/me", "Bearer "+signed)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.NotContains(t, body, "victim")
}

func TestFlowErrorResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/expired", func(c *fiber.Ctx) error {
		return FlowErrorResponse(c, &oauth.FlowError{Kind: oauth.KindExpired, Message: "Request token expired"})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return FlowErrorResponse(c, errors.New("pq: connection refused"))
	})

	status, body := doGet(t, app, "/expired", "")
	assert.Equal(t, fiber.StatusGone, status)
	assert.JSONEq(t, `{"error":"Request token expired"}`, body)

	status, body = doGet(t, app, "/internal", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"internal server error"}`, body)
	assert.NotContains(t, body, "pq")
}

func TestUpdatedDataResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		data := []string{"email"}
		return SuccessResponse(c, "ok", &data)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return ErrorNotFound(c, "project not found")
	})

	status, body := doGet(t, app, "/ok", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":200,"message":"ok","updatedData":["email"]}`, body)

	status, body = doGet(t, app, "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"status":404,"message":"project not found"}`, body)
}
