package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/checkinapp/checkin/internal/account/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "account.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func TestGetSetRemoveRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, store.KeyLoggedInUsername); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, store.KeyLoggedInUsername, "alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := s.Get(ctx, store.KeyLoggedInUsername)
	if err != nil || !ok || value != "alice" {
		t.Fatalf("expected alice, got %q ok=%v err=%v", value, ok, err)
	}

	// Overwrite replaces the value in place.
	if err := s.Set(ctx, store.KeyLoggedInUsername, "bob"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, _, _ = s.Get(ctx, store.KeyLoggedInUsername)
	if value != "bob" {
		t.Fatalf("expected bob after overwrite, got %q", value)
	}

	if err := s.Remove(ctx, store.KeyLoggedInUsername); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, store.KeyLoggedInUsername); ok {
		t.Fatal("expected key removed")
	}

	// Removing an absent key is fine.
	if err := s.Remove(ctx, store.KeyLoggedInUsername); err != nil {
		t.Fatalf("remove absent key: %v", err)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.db")
	ctx := context.Background()

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.Set(ctx, store.KeyIsGuestMode, "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, store.KeyIsGuestMode)
	if err != nil || !ok || value != "true" {
		t.Fatalf("expected persisted guest flag, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestUserCacheClearIsScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutUserCacheEntry(ctx, "alice", "stats", `{"checkins":3}`); err != nil {
		t.Fatalf("put cache entry: %v", err)
	}
	if err := s.PutUserCacheEntry(ctx, "bob", "stats", `{"checkins":9}`); err != nil {
		t.Fatalf("put cache entry: %v", err)
	}

	if err := s.ClearUserCache(ctx, "alice"); err != nil {
		t.Fatalf("clear user cache: %v", err)
	}

	if _, err := s.GetUserCacheEntry(ctx, "alice", "stats"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected alice cache cleared, got %v", err)
	}
	payload, err := s.GetUserCacheEntry(ctx, "bob", "stats")
	if err != nil {
		t.Fatalf("get cache entry: %v", err)
	}
	if payload != `{"checkins":9}` {
		t.Fatalf("expected bob cache intact, got %q", payload)
	}
}
