package oauth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	gamelinkLogger "gamelink-suite/utils/logger"
)

// Flow runs the request -> authorize -> token exchange protocol between a game,
// the user and the platform.
type Flow struct {
	store      TokenStore
	clients    ClientDirectory
	users      UserDirectory
	recorder   GrantRecorder
	requestTTL time.Duration
	clock      Clock
	logger     *gamelinkLogger.Logger
}

type FlowOption func(*Flow)

func WithGrantRecorder(r GrantRecorder) FlowOption {
	return func(f *Flow) {
		if r != nil {
			f.recorder = r
		}
	}
}

// WithRequestTTL must match the TTL the TokenStore was built with.
func WithRequestTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) {
		if ttl > 0 {
			f.requestTTL = ttl
		}
	}
}

func WithClock(c Clock) FlowOption {
	return func(f *Flow) {
		if c != nil {
			f.clock = c
		}
	}
}

func WithLogger(l *gamelinkLogger.Logger) FlowOption {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

func NewFlow(store TokenStore, clients ClientDirectory, users UserDirectory, opts ...FlowOption) *Flow {
	f := &Flow{
		store:      store,
		clients:    clients,
		users:      users,
		recorder:   noopRecorder{},
		requestTTL: DefaultRequestTokenTTL,
		clock:      time.Now,
		logger:     gamelinkLogger.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type IssuedRequest struct {
	RequestToken string
	ExpiresIn    int
}

type RequestInfo struct {
	Game         ClientInfo
	Scopes       ScopeSet
	Descriptions []string
	ExpiresIn    int
}

// Request issues a request token for apiKey. With no requested scopes the
// client's full allowed set is used.
func (f *Flow) Request(ctx context.Context, apiKey string, requested []string) (*IssuedRequest, error) {
	if apiKey == "" {
		return nil, newFlowError(KindInvalidInput, "API key is required")
	}
	valid, err := f.clients.ValidateAPIKey(ctx, apiKey)
	if err != nil {
		return nil, internalError(fmt.Errorf("validate api key: %w", err))
	}
	if !valid {
		return nil, newFlowError(KindUnauthenticated, "Invalid API key")
	}
	client, err := f.resolveClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	scopes := client.AllowedScopes.Clone()
	if len(requested) > 0 {
		parsed, err := ParseScopeSet(requested)
		if err != nil {
			return nil, newFlowError(KindInvalidInput, err.Error())
		}
		if missing := parsed.Missing(client.AllowedScopes); len(missing) > 0 {
			return nil, newFlowError(KindInvalidInput, "Requested scopes are not allowed for this API key: "+missing.String())
		}
		scopes = parsed
	}
	if len(scopes) == 0 {
		return nil, newFlowError(KindInvalidInput, "No scopes available for this API key")
	}

	rt, err := f.store.IssueRequestToken(ctx, apiKey, scopes)
	if err != nil {
		return nil, internalError(err)
	}
	f.record(ctx, GrantEvent{Type: GrantEventRequest, APIKey: apiKey, Scopes: rt.Scopes})
	return &IssuedRequest{
		RequestToken: rt.Token,
		ExpiresIn:    int(f.requestTTL / time.Second),
	}, nil
}

// Authorize binds the request token to the authenticated user.
func (f *Flow) Authorize(ctx context.Context, requestToken, userID string) error {
	if requestToken == "" {
		return newFlowError(KindInvalidInput, "request_token is required")
	}
	if userID == "" {
		return newFlowError(KindUnauthenticated, "Authentication required")
	}
	rt, err := f.store.AuthorizeRequestToken(ctx, requestToken, userID)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return newFlowError(KindInvalidInput, "Invalid request token")
	case errors.Is(err, ErrTokenExpired):
		return newFlowError(KindExpired, "Request token expired")
	case errors.Is(err, ErrTokenBoundToOtherUser):
		f.logger.Warnf("request token %s: rebind attempt by user %s refused", gamelinkLogger.TokenPrefix(requestToken), userID)
		return newFlowError(KindForbidden, "Request token already authorized by another user")
	case err != nil:
		return internalError(err)
	}
	f.record(ctx, GrantEvent{Type: GrantEventAuthorize, APIKey: rt.APIKey, UserID: userID, Scopes: rt.Scopes})
	return nil
}

// Exchange trades an authorized request token for an access token. Scopes are
// checked against the client's allowed scopes as they are now, not as they
// were at request time.
func (f *Flow) Exchange(ctx context.Context, requestToken string) (*AccessToken, error) {
	if requestToken == "" {
		return nil, newFlowError(KindInvalidInput, "request_token is required")
	}
	rt, err := f.store.LookupRequestToken(ctx, requestToken)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return nil, newFlowError(KindForbidden, "Request token not authorized by user")
	case errors.Is(err, ErrTokenExpired):
		return nil, newFlowError(KindExpired, "Request token expired")
	case err != nil:
		return nil, internalError(err)
	}
	switch rt.State(f.clock(), f.requestTTL) {
	case RequestStateExpired:
		return nil, newFlowError(KindExpired, "Request token expired")
	case RequestStatePending:
		return nil, newFlowError(KindForbidden, "Request token not authorized by user")
	}

	client, err := f.resolveClient(ctx, rt.APIKey)
	if err != nil {
		return nil, err
	}
	if len(rt.Scopes) == 0 {
		return nil, newFlowError(KindInvalidInput, "No scopes available for this API key")
	}
	if missing := rt.Scopes.Missing(client.AllowedScopes); len(missing) > 0 {
		return nil, newFlowError(KindForbidden, "API key does not have required scopes: "+missing.String())
	}

	at, err := f.store.IssueAccessToken(ctx, rt.APIKey, rt.UserID, rt.Scopes)
	if err != nil {
		return nil, internalError(err)
	}
	f.record(ctx, GrantEvent{Type: GrantEventExchange, APIKey: rt.APIKey, UserID: rt.UserID, Scopes: at.Scopes})
	return at, nil
}

// UserData returns the token owner's record filtered by the granted scopes.
func (f *Flow) UserData(ctx context.Context, accessToken string) (UserProjection, error) {
	if accessToken == "" {
		return nil, newFlowError(KindInvalidInput, "access_token is required")
	}
	at, err := f.store.LookupAccessToken(ctx, accessToken)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return nil, newFlowError(KindUnauthenticated, "Invalid access_token")
	case errors.Is(err, ErrTokenExpired):
		return nil, newFlowError(KindUnauthenticated, "access_token expired")
	case err != nil:
		return nil, internalError(err)
	}
	user, err := f.users.GetUserByID(ctx, at.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, newFlowError(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, internalError(fmt.Errorf("load user: %w", err))
	}
	return ProjectUser(user, at.Scopes), nil
}

func (f *Flow) GameInfo(ctx context.Context, apiKey string) (*ClientInfo, error) {
	if apiKey == "" {
		return nil, newFlowError(KindInvalidInput, "API key is required")
	}
	return f.resolveClient(ctx, apiKey)
}

// CheckGrant looks up the newest live access token the user granted this game.
func (f *Flow) CheckGrant(ctx context.Context, apiKey, userID string) (*AccessToken, error) {
	if apiKey == "" || userID == "" {
		return nil, newFlowError(KindInvalidInput, "apiKey and userId are required")
	}
	at, err := f.store.FindAccessTokenByClientAndUser(ctx, apiKey, userID)
	if errors.Is(err, ErrTokenNotFound) {
		return nil, newFlowError(KindNotFound, "User has not authorized this game before")
	}
	if err != nil {
		return nil, internalError(err)
	}
	return at, nil
}

// RequestInfo describes a pending request for the consent screen.
func (f *Flow) RequestInfo(ctx context.Context, requestToken string) (*RequestInfo, error) {
	if requestToken == "" {
		return nil, newFlowError(KindInvalidInput, "request_token is required")
	}
	rt, err := f.store.LookupRequestToken(ctx, requestToken)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return nil, newFlowError(KindNotFound, "Invalid request_token")
	case errors.Is(err, ErrTokenExpired):
		return nil, newFlowError(KindExpired, "Request token expired")
	case err != nil:
		return nil, internalError(err)
	}
	client, err := f.resolveClient(ctx, rt.APIKey)
	if err != nil {
		return nil, err
	}
	remaining := rt.ExpiresAt(f.requestTTL).Sub(f.clock())
	return &RequestInfo{
		Game:         ClientInfo{Name: client.Name, Logo: client.Logo},
		Scopes:       rt.Scopes,
		Descriptions: ScopeDescriptions(rt.Scopes),
		ExpiresIn:    int(math.Ceil(remaining.Seconds())),
	}, nil
}

func (f *Flow) resolveClient(ctx context.Context, apiKey string) (*ClientInfo, error) {
	client, err := f.clients.ResolveClient(ctx, apiKey)
	if errors.Is(err, ErrClientNotFound) {
		return nil, newFlowError(KindNotFound, "Game not found")
	}
	if err != nil {
		return nil, internalError(fmt.Errorf("resolve client: %w", err))
	}
	return client, nil
}

func (f *Flow) record(ctx context.Context, event GrantEvent) {
	event.At = f.clock()
	if err := f.recorder.RecordGrantEvent(ctx, event); err != nil {
		f.logger.Warnf("failed to record %s grant event: %v", event.Type, err)
	}
}
