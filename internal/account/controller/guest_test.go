package controller

import (
	"context"
	"regexp"
	"testing"

	"github.com/checkinapp/checkin/internal/account/remote"
	"github.com/checkinapp/checkin/internal/account/store"
	"github.com/checkinapp/checkin/internal/account/store/memory"
	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

var guestUsernamePattern = regexp.MustCompile(`^guest\d{6}$`)

func TestEnterGuestModeGeneratesGuestSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.controller.EnterGuestMode(ctx); err != nil {
		t.Fatalf("enter guest mode: %v", err)
	}

	state := f.controller.Snapshot()
	if !guestUsernamePattern.MatchString(state.Username) {
		t.Fatalf("guest username %q does not match guest\\d{6}", state.Username)
	}
	if !state.Authenticated || !state.GuestMode {
		t.Fatalf("expected authenticated guest session, got %+v", state)
	}

	flag, _, _ := f.store.Get(ctx, store.KeyIsGuestMode)
	if flag != "true" {
		t.Fatalf("expected guest flag persisted, got %q", flag)
	}
	stored, _, _ := f.store.Get(ctx, store.KeyGuestUsername)
	if stored != state.Username {
		t.Fatalf("expected guest username persisted, got %q", stored)
	}
}

func TestEnterGuestModeClearsRealAccountKeys(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.controller.HandleSuccessfulLogin(ctx, "alice", "Alice"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.controller.EnterGuestMode(ctx); err != nil {
		t.Fatalf("enter guest mode: %v", err)
	}

	if _, ok, _ := f.store.Get(ctx, store.KeyLoggedInUsername); ok {
		t.Fatal("guest entry must clear the real-account username key")
	}
	if _, ok, _ := f.store.Get(ctx, store.KeyLoggedInName); ok {
		t.Fatal("guest entry must clear the real-account name key")
	}
}

func TestEnterGuestModeStoreFailureLeavesStateUntouched(t *testing.T) {
	failing := &failingStore{Store: memory.New()}
	f := newFixture(t, func(cfg *Config) {
		cfg.Store = failing
	})
	before := f.controller.Snapshot()

	failing.failSet = true
	err := f.controller.EnterGuestMode(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeStorageWrite {
		t.Fatalf("expected storage-write error, got %v", err)
	}
	if f.controller.Snapshot() != before {
		t.Fatal("failed guest entry must not touch session state")
	}
}

func TestSkipOnboardingRegistersRandomUser(t *testing.T) {
	f := newFixture(t, nil)
	f.auth.registerScript = []scripted{{result: remote.AuthResult{Success: true, Message: "account created"}}}

	if err := f.controller.SkipOnboardingWithRandomUser(context.Background()); err != nil {
		t.Fatalf("skip onboarding: %v", err)
	}

	registerCalls := f.auth.callsFor("register")
	if len(registerCalls) != 1 {
		t.Fatalf("expected one register call, got %d", len(registerCalls))
	}
	if registerCalls[0].password != "12345678" {
		t.Fatalf("expected first candidate password, got %q", registerCalls[0].password)
	}

	state := f.controller.Snapshot()
	if !state.Authenticated {
		t.Fatal("expected registered session")
	}
	if state.GuestMode {
		t.Fatal("skip-onboarding produces a real account, not a guest")
	}
	if state.Username == "" || state.DisplayName == "" {
		t.Fatalf("expected generated identity, got %+v", state)
	}
	if guestUsernamePattern.MatchString(state.Username) {
		t.Fatalf("generated identity must not use the guest format, got %q", state.Username)
	}
}

func TestSkipOnboardingExhaustionFails(t *testing.T) {
	f := newFixture(t, nil)

	err := f.controller.SkipOnboardingWithRandomUser(context.Background())
	if apperrors.CodeOf(err) != apperrors.CodeAccountCascadeExhausted {
		t.Fatalf("expected cascade exhausted, got %v", err)
	}
	if f.controller.Snapshot().Authenticated {
		t.Fatal("exhaustion must not authenticate")
	}
}
