package dev

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkOAuth "gamelink-suite/utils/oauth"
	"gamelink-suite/utils/oauth/oauthtest"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type devFixture struct {
	app     *fiber.App
	clients *oauthtest.ClientDirectory
	session *gamelinkAPIHelper.SessionHandler
}

func newDevFixture(t *testing.T) *devFixture {
	t.Helper()
	clients := oauthtest.NewClientDirectory()
	clients.AddClient("ak_rally", "Star Rally", "", "email", "username", "avatar")
	projects := oauthtest.NewProjectDirectory(clients)
	projects.AddProject("p1", "dev1", []string{"email", "username", "avatar"}, "ak_rally")

	app := fiber.New(fiber.Config{JSONEncoder: sonic.Marshal, JSONDecoder: sonic.Unmarshal})
	session, err := gamelinkAPIHelper.NewSessionHandler(nil, "dev-test-key", false)
	require.NoError(t, err)
	RegisterDevRoutes(gamelinkAPIHelper.NewGameLinkRouterHelpers(app, nil, session, nil, projects))
	return &devFixture{app: app, clients: clients, session: session}
}

func (f *devFixture) do(t *testing.T, method, target, userID string, body any) (int, gamelinkAPIHelper.GenericResponse[ProjectScopesData]) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if userID != "" {
		token, err := f.session.IssueSession(context.Background(), userID)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out gamelinkAPIHelper.GenericResponse[ProjectScopesData]
	if resp.StatusCode != fiber.StatusUnauthorized {
		require.NoError(t, sonic.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestGetProjectScopes(t *testing.T) {
	f := newDevFixture(t)

	status, resp := f.do(t, fiber.MethodGet, "/api/dev/projects/p1/oauth-scopes", "dev1", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, resp.UpdatedData)
	assert.Equal(t, []string{"email", "username", "avatar"}, resp.UpdatedData.Scopes)
	assert.Equal(t, gamelinkOAuth.AllScopes, resp.UpdatedData.Available)

	status, resp = f.do(t, fiber.MethodGet, "/api/dev/projects/p1/oauth-scopes", "dev2", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "project not found", resp.Message)

	status, _ = f.do(t, fiber.MethodGet, "/api/dev/projects/p1/oauth-scopes", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestUpdateProjectScopes(t *testing.T) {
	f := newDevFixture(t)
	ctx := context.Background()

	status, resp := f.do(t, fiber.MethodPost, "/api/dev/projects/p1/oauth-scopes", "dev1", fiber.Map{"scopes": []string{"email"}})
	require.Equal(t, fiber.StatusOK, status, resp.Message)
	assert.Equal(t, []string{"email"}, resp.UpdatedData.Scopes)

	info, err := f.clients.ResolveClient(ctx, "ak_rally")
	require.NoError(t, err)
	assert.Equal(t, gamelinkOAuth.ScopeSet{"email"}, info.AllowedScopes)

	status, resp = f.do(t, fiber.MethodPost, "/api/dev/projects/p1/oauth-scopes", "dev1", fiber.Map{"scopes": []string{"email", "telepathy"}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "unknown scopes: telepathy", resp.Message)

	status, _ = f.do(t, fiber.MethodPost, "/api/dev/projects/p1/oauth-scopes", "dev1", fiber.Map{"scopes": "email"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = f.do(t, fiber.MethodPost, "/api/dev/projects/p1/oauth-scopes", "dev2", fiber.Map{"scopes": []string{"avatar"}})
	assert.Equal(t, fiber.StatusNotFound, status)

	info, err = f.clients.ResolveClient(ctx, "ak_rally")
	require.NoError(t, err)
	assert.Equal(t, gamelinkOAuth.ScopeSet{"email"}, info.AllowedScopes)
}
