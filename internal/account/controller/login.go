package controller

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/checkinapp/checkin/internal/account/events"
	"github.com/checkinapp/checkin/internal/account/identity"
	"github.com/checkinapp/checkin/internal/account/session"
	"github.com/checkinapp/checkin/internal/account/store"
	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// LoginUserInstantly commits a local identity without waiting on the backend,
// so the UI can proceed immediately. A single best-effort registration runs in
// the background; its failure is logged and never surfaced or retried.
func (c *Controller) LoginUserInstantly(ctx context.Context, username, displayName string) error {
	ident := identity.Identity{Username: username, DisplayName: displayName}
	if err := ident.Validate(); err != nil {
		c.setStatus(err.Error())
		return err
	}
	if c.isClosed() {
		return nil
	}

	c.persistIdentity(ctx, ident)

	c.mutate(func(s *session.State) {
		s.Authenticated = true
		s.Username = ident.Username
		s.DisplayName = ident.DisplayName
		s.StatusMessage = statusSignedIn
		s.FirstTimeUser = false
		s.GuestMode = false
		s.Loading = false
	})
	c.publish(ctx, events.UserAuthenticated{Username: ident.Username})

	if c.cfg.Auth != nil {
		go c.backgroundRegister(ident)
	}
	return nil
}

// backgroundRegister makes one opportunistic register attempt so the local
// identity eventually exists remotely. Detached from the caller's context:
// the UI flow that spawned it has already completed.
func (c *Controller) backgroundRegister(ident identity.Identity) {
	if c.isClosed() {
		return
	}
	result, err := c.cfg.Auth.Register(context.Background(), ident.Username, identity.CredentialCandidates[0])
	switch {
	case err != nil:
		log.Printf("account: background register for %s: %v", ident.Username, err)
	case !result.Success:
		log.Printf("account: background register for %s rejected: %s", ident.Username, result.Message)
	}
}

// LoginUser drives the full credential cascade: every non-empty candidate
// password against login, then social auth, then the same candidates against
// register. Candidates run strictly in order; an explicit rejection and a
// transport failure both mean "try the next one".
func (c *Controller) LoginUser(ctx context.Context, username, displayName string) error {
	ident := identity.Identity{Username: username, DisplayName: displayName}
	if err := ident.Validate(); err != nil {
		c.setStatus(err.Error())
		return err
	}
	if err := c.requireAuth(); err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "account.login_cascade",
		trace.WithAttributes(attribute.String("account.username", ident.Username)))
	defer span.End()

	c.mutate(func(s *session.State) {
		s.Loading = true
		s.StatusMessage = statusCheckingIn
	})

	for _, password := range identity.CredentialCandidates {
		if password == "" {
			continue
		}
		result, err := c.cfg.Auth.Login(ctx, ident.Username, password)
		if err == nil && result.Success {
			return c.commit(ctx, ident, result.Message)
		}
	}

	return c.trySocialFallback(ctx, ident)
}

// trySocialFallback runs after all login candidates are exhausted.
func (c *Controller) trySocialFallback(ctx context.Context, ident identity.Identity) error {
	result, err := c.cfg.Auth.SocialAuth(ctx, ident.Username)
	if err == nil && result.Success {
		return c.commit(ctx, ident, result.Message)
	}
	return c.registerCascade(ctx, ident)
}

// registerCascade mirrors the login cascade against register. Exhaustion is
// terminal: no further fallback exists past this point.
func (c *Controller) registerCascade(ctx context.Context, ident identity.Identity) error {
	for _, password := range identity.CredentialCandidates {
		if password == "" {
			continue
		}
		result, err := c.cfg.Auth.Register(ctx, ident.Username, password)
		if err == nil && result.Success {
			return c.commit(ctx, ident, result.Message)
		}
	}

	c.mutate(func(s *session.State) {
		s.Loading = false
		s.StatusMessage = statusRegistrationFailed
	})
	return apperrors.New(apperrors.CodeAccountCascadeExhausted, statusRegistrationFailed)
}

// commit is the single convergence point for every successful authentication
// path. It persists the identity, replaces session state, and notifies
// subscribers. Store write failures are logged but do not roll back the
// in-memory sign-in, matching the legacy client's persistence semantics.
// A controller closed mid-flight commits nothing: no writes, no events.
func (c *Controller) commit(ctx context.Context, ident identity.Identity, message string) error {
	if c.isClosed() {
		return nil
	}
	if message == "" {
		message = statusSignedIn
	}

	c.persistIdentity(ctx, ident)

	c.mutate(func(s *session.State) {
		s.Authenticated = true
		s.Username = ident.Username
		s.DisplayName = ident.DisplayName
		s.StatusMessage = message
		s.FirstTimeUser = false
		s.GuestMode = false
		s.Loading = false
	})

	c.publish(ctx, events.UserAuthenticated{Username: ident.Username})

	// Stats consumers must never delay the visible commit.
	statsCtx := context.WithoutCancel(ctx)
	go func() {
		if c.isClosed() {
			return
		}
		c.publish(statsCtx, events.HeaderStatsReady{Username: ident.Username})
	}()

	return nil
}

// persistIdentity mirrors a real-account identity into the durable store and
// clears the guest marker, keeping at most one session kind active.
func (c *Controller) persistIdentity(ctx context.Context, ident identity.Identity) {
	writes := []struct{ key, value string }{
		{store.KeyLoggedInUsername, ident.Username},
		{store.KeyLoggedInName, ident.DisplayName},
		{store.KeyHasUsedAppBefore, "true"},
		{store.KeyIsGuestMode, "false"},
	}
	for _, write := range writes {
		if err := c.cfg.Store.Set(ctx, write.key, write.value); err != nil {
			log.Printf("account: persist %s: %v", write.key, err)
		}
	}
}
