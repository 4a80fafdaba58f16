// Package sdk is the game-side client for the delegated authorization API.
package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// APIError is returned for every non-2xx answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gamelink api error (status %d): %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

type RequestTokenResult struct {
	RequestToken string `json:"request_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type GameInfo struct {
	Name   string   `json:"name"`
	Logo   string   `json:"logo"`
	Scopes []string `json:"scopes"`
}

type Grant struct {
	AccessToken   string   `json:"access_token"`
	AllowedScopes []string `json:"allowedScopes"`
	CreatedAt     int64    `json:"createdAt"`
}

func (g *Grant) CreatedTime() time.Time {
	return time.UnixMilli(g.CreatedAt)
}

type RequestInfo struct {
	Game struct {
		Name string `json:"name"`
		Logo string `json:"logo"`
	} `json:"game"`
	Scopes            []string `json:"scopes"`
	ScopeDescriptions []string `json:"scope_descriptions"`
	ExpiresIn         int      `json:"expires_in"`
}

// UserData holds "id" plus whichever granted fields the platform returned.
type UserData map[string]string

func (u UserData) ID() string { return u["id"] }

type Client struct {
	http   *resty.Client
	apiKey string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.http.SetHeader("User-Agent", ua) }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	c := &Client{http: http, apiKey: apiKey}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestToken starts a grant. With no scopes the game's full allowed set is requested.
func (c *Client) RequestToken(ctx context.Context, scopes ...string) (*RequestTokenResult, error) {
	body := map[string]any{"apiKey": c.apiKey}
	if len(scopes) > 0 {
		body["scopes"] = scopes
	}
	var out RequestTokenResult
	if err := c.do(ctx, resty.MethodPost, "/api/oauth/request", body, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConsentURL is where the game sends the player to approve requestToken.
func ConsentURL(frontendURL, requestToken string) string {
	return strings.TrimRight(frontendURL, "/") + "/oauth/authorize?request_token=" + url.QueryEscape(requestToken)
}

// Authorize approves a request on behalf of the signed-in user. Games never
// call this; it exists for first-party frontends and tests.
func (c *Client) Authorize(ctx context.Context, sessionToken, requestToken string) error {
	var out struct {
		Success bool `json:"success"`
	}
	body := map[string]string{"request_token": requestToken}
	return c.do(ctx, resty.MethodPost, "/api/oauth/authorize", body, nil, sessionToken, &out)
}

func (c *Client) ExchangeToken(ctx context.Context, requestToken string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"request_token": requestToken}
	if err := c.do(ctx, resty.MethodPost, "/api/oauth/token", body, nil, "", &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) UserData(ctx context.Context, accessToken string) (UserData, error) {
	var out struct {
		User UserData `json:"user"`
	}
	if err := c.do(ctx, resty.MethodGet, "/api/oauth/userdata", nil, nil, accessToken, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) GameInfo(ctx context.Context) (*GameInfo, error) {
	var out GameInfo
	query := map[string]string{"apiKey": c.apiKey}
	if err := c.do(ctx, resty.MethodGet, "/api/oauth/gameinfo", nil, query, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Check returns the newest live grant userID gave this game.
func (c *Client) Check(ctx context.Context, userID string) (*Grant, error) {
	var out Grant
	query := map[string]string{"apiKey": c.apiKey, "userId": userID}
	if err := c.do(ctx, resty.MethodGet, "/api/oauth/check", nil, query, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestInfo(ctx context.Context, requestToken string) (*RequestInfo, error) {
	var out RequestInfo
	query := map[string]string{"request_token": requestToken}
	if err := c.do(ctx, resty.MethodGet, "/api/oauth/requestinfo", nil, query, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, query map[string]string, bearer string, out any) error {
	var apiErr errorBody
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&apiErr)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if query != nil {
		req.SetQueryParams(query)
	}
	if bearer != "" {
		req.SetAuthToken(bearer)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = strings.TrimSpace(string(resp.Body()))
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}
