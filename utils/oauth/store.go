package oauth

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultRequestTokenTTL = 5 * time.Minute
	DefaultSweepInterval   = time.Minute
	// requestRetention keeps expired request tokens around briefly so callers
	// get "expired" rather than "unknown" right after the window closes.
	requestRetention = 5 * time.Minute
)

var (
	ErrTokenNotFound         = errors.New("token not found")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenBoundToOtherUser = errors.New("request token already authorized by another user")
)

type Clock func() time.Time

type RequestState string

const (
	RequestStatePending    RequestState = "pending"
	RequestStateAuthorized RequestState = "authorized"
	RequestStateExpired    RequestState = "expired"
)

type RequestToken struct {
	Token      string    `msgpack:"token"`
	APIKey     string    `msgpack:"api_key"`
	Scopes     ScopeSet  `msgpack:"scopes"`
	CreatedAt  time.Time `msgpack:"created_at"`
	Authorized bool      `msgpack:"authorized"`
	UserID     string    `msgpack:"user_id,omitempty"`
}

func (r *RequestToken) ExpiresAt(ttl time.Duration) time.Time {
	return r.CreatedAt.Add(ttl)
}

// Expired is true from createdAt+ttl onwards.
func (r *RequestToken) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(r.ExpiresAt(ttl))
}

func (r *RequestToken) State(now time.Time, ttl time.Duration) RequestState {
	switch {
	case r.Expired(now, ttl):
		return RequestStateExpired
	case r.Authorized && r.UserID != "":
		return RequestStateAuthorized
	default:
		return RequestStatePending
	}
}

func (r *RequestToken) clone() *RequestToken {
	c := *r
	c.Scopes = r.Scopes.Clone()
	return &c
}

type AccessToken struct {
	Token     string    `msgpack:"token"`
	APIKey    string    `msgpack:"api_key"`
	UserID    string    `msgpack:"user_id"`
	Scopes    ScopeSet  `msgpack:"scopes"`
	CreatedAt time.Time `msgpack:"created_at"`
	// ExpiresAt is zero for tokens that never expire.
	ExpiresAt time.Time `msgpack:"expires_at,omitempty"`
}

func (a *AccessToken) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}

func (a *AccessToken) clone() *AccessToken {
	c := *a
	c.Scopes = a.Scopes.Clone()
	return &c
}

// TokenStore keeps request and access tokens. Every method is atomic with
// respect to the token it touches.
type TokenStore interface {
	IssueRequestToken(ctx context.Context, apiKey string, scopes ScopeSet) (*RequestToken, error)
	// LookupRequestToken returns ErrTokenNotFound or ErrTokenExpired.
	LookupRequestToken(ctx context.Context, token string) (*RequestToken, error)
	// AuthorizeRequestToken binds a pending token to userID. Binding again to the
	// same user succeeds, binding to a different user returns ErrTokenBoundToOtherUser.
	AuthorizeRequestToken(ctx context.Context, token, userID string) (*RequestToken, error)
	IssueAccessToken(ctx context.Context, apiKey, userID string, scopes ScopeSet) (*AccessToken, error)
	LookupAccessToken(ctx context.Context, token string) (*AccessToken, error)
	FindAccessTokenByClientAndUser(ctx context.Context, apiKey, userID string) (*AccessToken, error)
	Close() error
}

type StoreOptions struct {
	RequestTTL time.Duration
	// AccessTTL of zero disables access token expiry.
	AccessTTL     time.Duration
	SweepInterval time.Duration
	Clock         Clock
}

func (o StoreOptions) withDefaults() StoreOptions {
	if o.RequestTTL <= 0 {
		o.RequestTTL = DefaultRequestTokenTTL
	}
	if o.AccessTTL < 0 {
		o.AccessTTL = 0
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

func (o StoreOptions) accessExpiry(now time.Time) time.Time {
	if o.AccessTTL == 0 {
		return time.Time{}
	}
	return now.Add(o.AccessTTL)
}
