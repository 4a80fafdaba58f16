package oauth

import (
	"context"
	"testing"
	"time"
)

func TestMemoryTokenStore(t *testing.T) {
	runTokenStoreSuite(t, func(t *testing.T, opts StoreOptions) TokenStore {
		return NewMemoryTokenStore(opts)
	})
}

func TestMemoryTokenStore_EvictionDropsIndex(t *testing.T) {
	s := NewMemoryTokenStore(StoreOptions{AccessTTL: time.Hour})
	defer s.Close()
	ctx := context.Background()

	at, err := s.IssueAccessToken(ctx, "ak_game", "u1", ScopeSet{"email"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	s.access.Delete(at.Token)

	deadline := time.Now().Add(time.Second)
	for {
		s.indexMu.Lock()
		_, ok := s.grants[grantKey{apiKey: "ak_game", userID: "u1"}]
		s.indexMu.Unlock()
		if !ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("grant index should be cleaned when the access token is evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryTokenStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryTokenStore(StoreOptions{})
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestStoreOptions_Defaults(t *testing.T) {
	o := StoreOptions{AccessTTL: -time.Second}.withDefaults()
	if o.RequestTTL != DefaultRequestTokenTTL {
		t.Errorf("RequestTTL = %v", o.RequestTTL)
	}
	if o.AccessTTL != 0 {
		t.Errorf("AccessTTL = %v, want 0", o.AccessTTL)
	}
	if o.SweepInterval != DefaultSweepInterval || o.Clock == nil {
		t.Errorf("unexpected defaults %+v", o)
	}
}
