package oauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type grantKey struct {
	apiKey string
	userID string
}

// MemoryTokenStore keeps tokens in process memory. The ttlcache expirations
// only reclaim memory; expiry decisions are made against opts.Clock.
type MemoryTokenStore struct {
	opts StoreOptions

	// mu serializes read-modify-write on request tokens.
	mu       sync.Mutex
	requests *ttlcache.Cache[string, *RequestToken]
	access   *ttlcache.Cache[string, *AccessToken]

	// indexMu guards grants and is never held while calling into the caches,
	// since eviction callbacks run under the cache lock.
	indexMu sync.Mutex
	grants  map[grantKey]string

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryTokenStore(opts StoreOptions) *MemoryTokenStore {
	opts = opts.withDefaults()
	s := &MemoryTokenStore{
		opts: opts,
		requests: ttlcache.New[string, *RequestToken](
			ttlcache.WithTTL[string, *RequestToken](opts.RequestTTL+requestRetention),
			ttlcache.WithDisableTouchOnHit[string, *RequestToken](),
		),
		access: ttlcache.New[string, *AccessToken](
			ttlcache.WithDisableTouchOnHit[string, *AccessToken](),
		),
		grants: make(map[grantKey]string),
		stop:   make(chan struct{}),
	}
	s.access.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[string, *AccessToken]) {
		tok := item.Value()
		key := grantKey{apiKey: tok.APIKey, userID: tok.UserID}
		s.indexMu.Lock()
		if s.grants[key] == tok.Token {
			delete(s.grants, key)
		}
		s.indexMu.Unlock()
	})
	go s.sweep()
	return s
}

func (s *MemoryTokenStore) sweep() {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.requests.DeleteExpired()
			s.access.DeleteExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryTokenStore) IssueRequestToken(_ context.Context, apiKey string, scopes ScopeSet) (*RequestToken, error) {
	token, err := s.uniqueToken(GenerateRequestToken, func(t string) bool { return s.requests.Has(t) })
	if err != nil {
		return nil, err
	}
	rt := &RequestToken{
		Token:     token,
		APIKey:    apiKey,
		Scopes:    scopes.Clone(),
		CreatedAt: s.opts.Clock(),
	}
	s.requests.Set(token, rt, ttlcache.DefaultTTL)
	return rt.clone(), nil
}

func (s *MemoryTokenStore) LookupRequestToken(_ context.Context, token string) (*RequestToken, error) {
	item := s.requests.Get(token)
	if item == nil {
		return nil, ErrTokenNotFound
	}
	rt := item.Value()
	if rt.Expired(s.opts.Clock(), s.opts.RequestTTL) {
		return nil, ErrTokenExpired
	}
	return rt.clone(), nil
}

func (s *MemoryTokenStore) AuthorizeRequestToken(_ context.Context, token, userID string) (*RequestToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.requests.Get(token)
	if item == nil {
		return nil, ErrTokenNotFound
	}
	rt := item.Value()
	if rt.Expired(s.opts.Clock(), s.opts.RequestTTL) {
		return nil, ErrTokenExpired
	}
	if rt.Authorized {
		if rt.UserID == userID {
			return rt.clone(), nil
		}
		return nil, ErrTokenBoundToOtherUser
	}

	updated := rt.clone()
	updated.Authorized = true
	updated.UserID = userID
	retain := time.Until(item.ExpiresAt())
	if retain <= 0 {
		retain = ttlcache.DefaultTTL
	}
	s.requests.Set(token, updated, retain)
	return updated.clone(), nil
}

func (s *MemoryTokenStore) IssueAccessToken(_ context.Context, apiKey, userID string, scopes ScopeSet) (*AccessToken, error) {
	token, err := s.uniqueToken(GenerateAccessToken, func(t string) bool { return s.access.Has(t) })
	if err != nil {
		return nil, err
	}
	now := s.opts.Clock()
	at := &AccessToken{
		Token:     token,
		APIKey:    apiKey,
		UserID:    userID,
		Scopes:    scopes.Clone(),
		CreatedAt: now,
		ExpiresAt: s.opts.accessExpiry(now),
	}
	ttl := ttlcache.NoTTL
	if s.opts.AccessTTL > 0 {
		ttl = s.opts.AccessTTL
	}
	s.access.Set(token, at, ttl)

	s.indexMu.Lock()
	s.grants[grantKey{apiKey: apiKey, userID: userID}] = token
	s.indexMu.Unlock()
	return at.clone(), nil
}

func (s *MemoryTokenStore) LookupAccessToken(_ context.Context, token string) (*AccessToken, error) {
	item := s.access.Get(token)
	if item == nil {
		return nil, ErrTokenNotFound
	}
	at := item.Value()
	if at.Expired(s.opts.Clock()) {
		return nil, ErrTokenExpired
	}
	return at.clone(), nil
}

func (s *MemoryTokenStore) FindAccessTokenByClientAndUser(ctx context.Context, apiKey, userID string) (*AccessToken, error) {
	s.indexMu.Lock()
	token, ok := s.grants[grantKey{apiKey: apiKey, userID: userID}]
	s.indexMu.Unlock()
	if !ok {
		return nil, ErrTokenNotFound
	}
	at, err := s.LookupAccessToken(ctx, token)
	if err != nil {
		return nil, ErrTokenNotFound
	}
	return at, nil
}

func (s *MemoryTokenStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.requests.DeleteAll()
		s.access.DeleteAll()
	})
	return nil
}

func (s *MemoryTokenStore) uniqueToken(gen func() (string, error), taken func(string) bool) (string, error) {
	for i := 0; i < 3; i++ {
		t, err := gen()
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		if !taken(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("generate token: exhausted attempts")
}
