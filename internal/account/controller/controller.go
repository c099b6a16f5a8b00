// Package controller orchestrates login, registration, guest mode, and
// profile changes against the remote backend and durable store.
package controller

import (
	"context"
	"log"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/checkinapp/checkin/internal/account/events"
	"github.com/checkinapp/checkin/internal/account/identity"
	"github.com/checkinapp/checkin/internal/account/remote"
	"github.com/checkinapp/checkin/internal/account/session"
	"github.com/checkinapp/checkin/internal/account/store"
	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// Status messages surfaced to the UI. The registration-failure text is fixed:
// the mobile client string-matches it.
const (
	statusCheckingIn         = "Checking in..."
	statusSignedIn           = "Signed in"
	statusWelcomeBack        = "Welcome back"
	statusGuestBrowsing      = "Browsing as guest"
	statusPhoneNeeded        = "Phone number required to finish sign-in"
	statusRegistrationFailed = "Registration failed - unable to create account"
)

// CacheInvalidator drops per-user cached data on logout.
type CacheInvalidator interface {
	ClearUserCache(ctx context.Context, username string) error
}

// Config carries the controller's collaborators. Store is required; Auth is
// required by the network-backed operations, which fail without it; the rest
// degrade to no-ops or defaults so partial wiring stays usable in tests.
type Config struct {
	Store store.Store
	Auth  remote.AuthService

	// Identity performs native social sign-in (Apple, Google, Spotify).
	Identity IdentityProvider

	Cache CacheInvalidator
	Bus   events.Bus

	// Clock and IntN default to time.Now and rand.IntN.
	Clock func() time.Time
	IntN  func(n int) int

	// PhoneNumberNeeded fires when a social sign-in is deferred pending a
	// phone number. Completion resumes via SubmitPhoneNumber.
	PhoneNumberNeeded func(identity.Identity)
}

// Controller owns the session state. All mutations are serialized behind one
// mutex, the process analogue of the legacy client's main-thread affinity, so
// observers always read a consistent snapshot.
type Controller struct {
	cfg    Config
	tracer trace.Tracer

	mu           sync.Mutex
	state        session.State
	pendingPhone *identity.Identity
	closed       bool
}

// New constructs a controller and bootstraps session state from the store.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Store == nil {
		return nil, apperrors.New(apperrors.CodeUnknown, "store is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.IntN == nil {
		cfg.IntN = rand.IntN
	}

	c := &Controller{
		cfg:    cfg,
		tracer: otel.Tracer("checkinapp/checkin/account"),
	}
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot returns a consistent copy of the current session state.
func (c *Controller) Snapshot() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close marks the controller torn down. Late asynchronous completions (the
// instant-login background register, deferred event publication) become
// no-ops instead of touching a dead controller.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// mutate applies fn to the session state under the single-writer lock.
// Mutations after Close are dropped.
func (c *Controller) mutate(fn func(*session.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	fn(&c.state)
}

// setStatus records an operation outcome message without other state changes.
func (c *Controller) setStatus(message string) {
	c.mutate(func(s *session.State) {
		s.StatusMessage = message
	})
}

// requireAuth rejects network-backed operations when no backend is wired.
func (c *Controller) requireAuth() error {
	if c.cfg.Auth == nil {
		return apperrors.New(apperrors.CodeUnknown, "auth service is not configured")
	}
	return nil
}

// publish emits an event when a bus is configured.
func (c *Controller) publish(ctx context.Context, event events.Event) {
	if c.cfg.Bus == nil {
		return
	}
	c.cfg.Bus.Publish(ctx, event)
}

// Logout invalidates the user's cache, resets the session to the logged-out
// default, and removes the real-account keys. Guest keys are left alone: only
// the explicit guest flow clears them. Calling Logout while already logged
// out is a no-op.
func (c *Controller) Logout(ctx context.Context) error {
	current := c.Snapshot()

	if current.Username != "" && c.cfg.Cache != nil {
		if err := c.cfg.Cache.ClearUserCache(ctx, current.Username); err != nil {
			log.Printf("account: clear user cache for %s: %v", current.Username, err)
		}
	}

	for _, key := range []string{store.KeyLoggedInUsername, store.KeyLoggedInName} {
		if err := c.cfg.Store.Remove(ctx, key); err != nil {
			log.Printf("account: remove %s on logout: %v", key, err)
		}
	}

	c.mutate(func(s *session.State) {
		*s = session.LoggedOut()
	})
	return nil
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UTC().UnixMilli(), 10)
}

func parseMillis(raw string) (time.Time, bool) {
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis).UTC(), true
}
