package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type storeFactory func(t *testing.T, opts StoreOptions) TokenStore

// runTokenStoreSuite checks the behaviour every TokenStore must share.
func runTokenStoreSuite(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	newWithClock := func(t *testing.T, accessTTL time.Duration) (TokenStore, *testClock) {
		clock := newTestClock()
		s := newStore(t, StoreOptions{
			RequestTTL: 5 * time.Minute,
			AccessTTL:  accessTTL,
			Clock:      clock.Now,
		})
		t.Cleanup(func() { _ = s.Close() })
		return s, clock
	}

	t.Run("IssueAndLookupRequestToken", func(t *testing.T) {
		s, clock := newWithClock(t, 0)
		rt, err := s.IssueRequestToken(ctx, "ak_game", ScopeSet{"email", "username"})
		require.NoError(t, err)
		assert.Len(t, rt.Token, 64)
		assert.False(t, rt.Authorized)
		assert.Empty(t, rt.UserID)
		assert.True(t, rt.CreatedAt.Equal(clock.Now()))

		got, err := s.LookupRequestToken(ctx, rt.Token)
		require.NoError(t, err)
		assert.Equal(t, "ak_game", got.APIKey)
		assert.Equal(t, ScopeSet{"email", "username"}, got.Scopes)
		assert.Equal(t, RequestStatePending, got.State(clock.Now(), 5*time.Minute))
	})

	t.Run("TokensAreUnique", func(t *testing.T) {
		s, _ := newWithClock(t, 0)
		seen := make(map[string]struct{})
		for i := 0; i < 50; i++ {
			rt, err := s.IssueRequestToken(ctx, "ak_game", ScopeSet{"email"})
			require.NoError(t, err)
			_, dup := seen[rt.Token]
			require.False(t, dup)
			seen[rt.Token] = struct{}{}
		}
	})

	t.Run("UnknownRequestToken", func(t *testing.T) {
		s, _ := newWithClock(t, 0)
		_, err := s.LookupRequestToken(ctx, "does-not-exist")
		assert.ErrorIs(t, err, ErrTokenNotFound)
		_, err = s.AuthorizeRequestToken(ctx, "does-not-exist", "u1")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("RequestTokenExpiryBoundary", func(t *testing.T) {
		s, clock := newWithClock(t, 0)
		rt, err := s.IssueRequestToken(ctx, "ak_game", ScopeSet{"email"})
		require.NoError(t, err)

		clock.Advance(5*time.Minute - time.Millisecond)
		_, err = s.LookupRequestToken(ctx, rt.Token)
		require.NoError(t, err)

		clock.Advance(time.Millisecond)
		_, err = s.LookupRequestToken(ctx, rt.Token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		_, err = s.AuthorizeRequestToken(ctx, rt.Token, "u1")
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("AuthorizeBindsOnce", func(t *testing.T) {
		s, _ := newWithClock(t, 0)
		rt, err := s.IssueRequestToken(ctx, "ak_game", ScopeSet{"email"})
		require.NoError(t, err)

		bound, err := s.AuthorizeRequestToken(ctx, rt.Token, "user-a")
		require.NoError(t, err)
		assert.True(t, bound.Authorized)
		assert.Equal(t, "user-a", bound.UserID)

		again, err := s.AuthorizeRequestToken(ctx, rt.Token, "user-a")
		require.NoError(t, err)
		assert.Equal(t, "user-a", again.UserID)

		_, err = s.AuthorizeRequestToken(ctx, rt.Token, "user-b")
		assert.ErrorIs(t, err, ErrTokenBoundToOtherUser)

		got, err := s.LookupRequestToken(ctx, rt.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-a", got.UserID)
	})

	t.Run("ConcurrentAuthorizeSingleWinner", func(t *testing.T) {
		s, _ := newWithClock(t, 0)
		rt, err := s.IssueRequestToken(ctx, "ak_game", ScopeSet{"email"})
		require.NoError(t, err)

		const workers = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners []string
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(user string) {
				defer wg.Done()
				_, err := s.AuthorizeRequestToken(ctx, rt.Token, user)
				if err == nil {
					mu.Lock()
					winners = append(winners, user)
					mu.Unlock()
					return
				}
				if !errors.Is(err, ErrTokenBoundToOtherUser) {
					t.Errorf("unexpected error: %v", err)
				}
			}(fmt.Sprintf("user-%d", i))
		}
		wg.Wait()

		require.Len(t, winners, 1)
		got, err := s.LookupRequestToken(ctx, rt.Token)
		require.NoError(t, err)
		assert.Equal(t, winners[0], got.UserID)
	})

	t.Run("AccessTokenIndexPointsAtNewest", func(t *testing.T) {
		s, clock := newWithClock(t, 0)
		first, err := s.IssueAccessToken(ctx, "ak_game", "u1", ScopeSet{"email"})
		require.NoError(t, err)
		assert.True(t, first.ExpiresAt.IsZero())

		clock.Advance(time.Second)
		second, err := s.IssueAccessToken(ctx, "ak_game", "u1", ScopeSet{"email", "username"})
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)

		found, err := s.FindAccessTokenByClientAndUser(ctx, "ak_game", "u1")
		require.NoError(t, err)
		assert.Equal(t, second.Token, found.Token)
		assert.Equal(t, ScopeSet{"email", "username"}, found.Scopes)

		_, err = s.FindAccessTokenByClientAndUser(ctx, "ak_game", "u2")
		assert.ErrorIs(t, err, ErrTokenNotFound)
		_, err = s.FindAccessTokenByClientAndUser(ctx, "ak_other", "u1")
		assert.ErrorIs(t, err, ErrTokenNotFound)

		stillValid, err := s.LookupAccessToken(ctx, first.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", stillValid.UserID)
	})

	t.Run("AccessTokenLookupIsReadOnly", func(t *testing.T) {
		s, clock := newWithClock(t, 0)
		at, err := s.IssueAccessToken(ctx, "ak_game", "u1", ScopeSet{"email"})
		require.NoError(t, err)

		a, err := s.LookupAccessToken(ctx, at.Token)
		require.NoError(t, err)
		a.Scopes[0] = "avatar"
		clock.Advance(time.Hour)
		b, err := s.LookupAccessToken(ctx, at.Token)
		require.NoError(t, err)
		assert.Equal(t, ScopeSet{"email"}, b.Scopes)
		assert.True(t, at.CreatedAt.Equal(b.CreatedAt))
	})

	t.Run("AccessTokenTTL", func(t *testing.T) {
		s, clock := newWithClock(t, time.Hour)
		at, err := s.IssueAccessToken(ctx, "ak_game", "u1", ScopeSet{"email"})
		require.NoError(t, err)
		assert.True(t, at.ExpiresAt.Equal(clock.Now().Add(time.Hour)))

		clock.Advance(time.Hour - time.Second)
		_, err = s.LookupAccessToken(ctx, at.Token)
		require.NoError(t, err)

		clock.Advance(time.Second)
		_, err = s.LookupAccessToken(ctx, at.Token)
		assert.ErrorIs(t, err, ErrTokenExpired)
		_, err = s.FindAccessTokenByClientAndUser(ctx, "ak_game", "u1")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}
