package controller

import (
	"context"

	"github.com/checkinapp/checkin/internal/account/identity"
	"github.com/checkinapp/checkin/internal/account/session"
	"github.com/checkinapp/checkin/internal/account/store"
	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// EnterGuestMode creates a locally generated guest session. No network call
// is involved; only a store-write failure can fail the operation, and then
// session state is left untouched.
//
// Guest handles are "guest" plus a 6-digit number. Collisions are accepted:
// guests have no remote account to collide with.
func (c *Controller) EnterGuestMode(ctx context.Context) error {
	guestUsername := identity.GuestUsername(c.cfg.IntN)
	guestName := "Guest"

	writes := []struct{ key, value string }{
		{store.KeyIsGuestMode, "true"},
		{store.KeyGuestUsername, guestUsername},
		{store.KeyGuestName, guestName},
		{store.KeyHasUsedAppBefore, "true"},
	}
	for _, write := range writes {
		if err := c.cfg.Store.Set(ctx, write.key, write.value); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageWrite, "persist guest session", err)
		}
	}

	// A guest session replaces any lingering real-account markers.
	for _, key := range []string{store.KeyLoggedInUsername, store.KeyLoggedInName} {
		if err := c.cfg.Store.Remove(ctx, key); err != nil {
			return apperrors.Wrap(apperrors.CodeStorageWrite, "clear account keys", err)
		}
	}

	c.mutate(func(s *session.State) {
		s.Authenticated = true
		s.GuestMode = true
		s.Username = guestUsername
		s.DisplayName = guestName
		s.StatusMessage = statusGuestBrowsing
		s.FirstTimeUser = false
		s.Loading = false
		s.HasPhoneNumber = false
	})
	return nil
}

// SkipOnboardingWithRandomUser registers a real account under a generated
// identity so the user can start without filling any form. Unlike guest mode
// this produces a remote-backed account via the registration cascade.
func (c *Controller) SkipOnboardingWithRandomUser(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	ident := identity.RandomIdentity(c.cfg.Clock, c.cfg.IntN)

	ctx, span := c.tracer.Start(ctx, "account.skip_onboarding")
	defer span.End()

	c.mutate(func(s *session.State) {
		s.Loading = true
		s.StatusMessage = statusCheckingIn
	})
	return c.registerCascade(ctx, ident)
}
