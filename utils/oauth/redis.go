package oauth

import (
	"context"
	"errors"
	"fmt"

	gamelinkRedis "gamelink-suite/utils/database/redis"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const maxAuthorizeRetries = 5

// RedisTokenStore shares tokens between instances. Key TTLs reclaim storage,
// expiry decisions are still made against opts.Clock.
type RedisTokenStore struct {
	manager *gamelinkRedis.GameLinkRedisManager
	opts    StoreOptions
}

func NewRedisTokenStore(manager *gamelinkRedis.GameLinkRedisManager, opts StoreOptions) *RedisTokenStore {
	return &RedisTokenStore{manager: manager, opts: opts.withDefaults()}
}

func (s *RedisTokenStore) client() *redis.Client {
	return s.manager.Redis
}

func (s *RedisTokenStore) IssueRequestToken(ctx context.Context, apiKey string, scopes ScopeSet) (*RequestToken, error) {
	rt := &RequestToken{
		APIKey:    apiKey,
		Scopes:    scopes.Clone(),
		CreatedAt: s.opts.Clock(),
	}
	for i := 0; i < 3; i++ {
		token, err := GenerateRequestToken()
		if err != nil {
			return nil, fmt.Errorf("generate request token: %w", err)
		}
		rt.Token = token
		data, err := msgpack.Marshal(rt)
		if err != nil {
			return nil, fmt.Errorf("encode request token: %w", err)
		}
		ok, err := s.client().SetNX(ctx, gamelinkRedis.BuildOAuthRequestTokenKey(token), data, s.opts.RequestTTL+requestRetention).Result()
		if err != nil {
			return nil, fmt.Errorf("store request token: %w", err)
		}
		if ok {
			return rt.clone(), nil
		}
	}
	return nil, fmt.Errorf("store request token: exhausted attempts")
}

func (s *RedisTokenStore) LookupRequestToken(ctx context.Context, token string) (*RequestToken, error) {
	raw, err := s.client().Get(ctx, gamelinkRedis.BuildOAuthRequestTokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load request token: %w", err)
	}
	rt, err := decodeRequestToken(raw)
	if err != nil {
		return nil, err
	}
	if rt.Expired(s.opts.Clock(), s.opts.RequestTTL) {
		return nil, ErrTokenExpired
	}
	return rt, nil
}

// AuthorizeRequestToken uses WATCH/MULTI so concurrent binds on one token
// cannot both win.
func (s *RedisTokenStore) AuthorizeRequestToken(ctx context.Context, token, userID string) (*RequestToken, error) {
	key := gamelinkRedis.BuildOAuthRequestTokenKey(token)
	var result *RequestToken

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrTokenNotFound
		}
		if err != nil {
			return fmt.Errorf("load request token: %w", err)
		}
		rt, err := decodeRequestToken(raw)
		if err != nil {
			return err
		}
		if rt.Expired(s.opts.Clock(), s.opts.RequestTTL) {
			return ErrTokenExpired
		}
		if rt.Authorized {
			if rt.UserID != userID {
				return ErrTokenBoundToOtherUser
			}
			result = rt
			return nil
		}
		rt.Authorized = true
		rt.UserID = userID
		data, err := msgpack.Marshal(rt)
		if err != nil {
			return fmt.Errorf("encode request token: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}
		result = rt
		return nil
	}

	for i := 0; i < maxAuthorizeRetries; i++ {
		err := s.client().Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result.clone(), nil
	}
	return nil, fmt.Errorf("authorize request token: too much contention")
}

func (s *RedisTokenStore) IssueAccessToken(ctx context.Context, apiKey, userID string, scopes ScopeSet) (*AccessToken, error) {
	now := s.opts.Clock()
	at := &AccessToken{
		APIKey:    apiKey,
		UserID:    userID,
		Scopes:    scopes.Clone(),
		CreatedAt: now,
		ExpiresAt: s.opts.accessExpiry(now),
	}
	for i := 0; i < 3; i++ {
		token, err := GenerateAccessToken()
		if err != nil {
			return nil, fmt.Errorf("generate access token: %w", err)
		}
		at.Token = token
		data, err := msgpack.Marshal(at)
		if err != nil {
			return nil, fmt.Errorf("encode access token: %w", err)
		}
		ok, err := s.client().SetNX(ctx, gamelinkRedis.BuildOAuthAccessTokenKey(token), data, s.opts.AccessTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("store access token: %w", err)
		}
		if !ok {
			continue
		}
		indexKey := gamelinkRedis.BuildOAuthGrantIndexKey(apiKey, userID)
		if err := s.client().Set(ctx, indexKey, token, s.opts.AccessTTL).Err(); err != nil {
			return nil, fmt.Errorf("index access token: %w", err)
		}
		return at.clone(), nil
	}
	return nil, fmt.Errorf("store access token: exhausted attempts")
}

func (s *RedisTokenStore) LookupAccessToken(ctx context.Context, token string) (*AccessToken, error) {
	raw, err := s.client().Get(ctx, gamelinkRedis.BuildOAuthAccessTokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	var at AccessToken
	if err := msgpack.Unmarshal(raw, &at); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}
	if at.Expired(s.opts.Clock()) {
		return nil, ErrTokenExpired
	}
	return &at, nil
}

func (s *RedisTokenStore) FindAccessTokenByClientAndUser(ctx context.Context, apiKey, userID string) (*AccessToken, error) {
	token, err := s.client().Get(ctx, gamelinkRedis.BuildOAuthGrantIndexKey(apiKey, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load grant index: %w", err)
	}
	at, err := s.LookupAccessToken(ctx, token)
	if errors.Is(err, ErrTokenExpired) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	if at.APIKey != apiKey || at.UserID != userID {
		return nil, ErrTokenNotFound
	}
	return at, nil
}

// Close leaves the shared client open; its owner closes it.
func (s *RedisTokenStore) Close() error {
	return nil
}

func decodeRequestToken(raw []byte) (*RequestToken, error) {
	var rt RequestToken
	if err := msgpack.Unmarshal(raw, &rt); err != nil {
		return nil, fmt.Errorf("decode request token: %w", err)
	}
	return &rt, nil
}
