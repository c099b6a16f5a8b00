package controller

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/checkinapp/checkin/internal/account/identity"
	"github.com/checkinapp/checkin/internal/account/session"
	"github.com/checkinapp/checkin/internal/account/store"
	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// usernameChangeCooldown is the minimum wait between username changes.
const usernameChangeCooldown = 14 * 24 * time.Hour

// CanChangeUsername reports whether the cooldown allows a username change.
// A user who never changed their username can always change it.
func (c *Controller) CanChangeUsername() bool {
	last := c.Snapshot().LastUsernameChangeAt
	if last.IsZero() {
		return true
	}
	return c.cfg.Clock().Sub(last) >= usernameChangeCooldown
}

// UpdateUsername changes the handle, subject to the cooldown and the
// 3-20 word-character format. The change is local-only: the backend keeps
// whatever handle it knows until the next sync.
// TODO(backend): propagate real-account username changes to the backend.
func (c *Controller) UpdateUsername(ctx context.Context, newUsername string) error {
	current := c.Snapshot()

	if !current.LastUsernameChangeAt.IsZero() {
		elapsed := c.cfg.Clock().Sub(current.LastUsernameChangeAt)
		if elapsed < usernameChangeCooldown {
			remaining := usernameChangeCooldown - elapsed
			days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
			err := apperrors.WithMetadata(apperrors.CodeAccountUsernameRateLimited,
				fmt.Sprintf("username can be changed again in %d days", days),
				map[string]string{"days_remaining": strconv.Itoa(days)})
			c.setStatus(err.Error())
			return err
		}
	}

	if err := identity.ValidateUsername(newUsername); err != nil {
		c.setStatus(err.Error())
		return err
	}

	now := c.cfg.Clock()
	usernameKey := store.KeyLoggedInUsername
	if current.GuestMode {
		usernameKey = store.KeyGuestUsername
	}
	if err := c.cfg.Store.Set(ctx, usernameKey, newUsername); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "persist username", err)
	}
	if err := c.cfg.Store.Set(ctx, store.KeyLastUsernameChange, formatMillis(now)); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "persist username change time", err)
	}

	c.mutate(func(s *session.State) {
		s.Username = newUsername
		s.LastUsernameChangeAt = now.UTC()
		s.StatusMessage = "Username updated"
	})
	return nil
}

// UpdateName changes the display name, locally persisted like the username
// but without any cooldown.
func (c *Controller) UpdateName(ctx context.Context, newName string) error {
	if err := identity.ValidateDisplayName(newName); err != nil {
		c.setStatus(err.Error())
		return err
	}

	nameKey := store.KeyLoggedInName
	if c.Snapshot().GuestMode {
		nameKey = store.KeyGuestName
	}
	if err := c.cfg.Store.Set(ctx, nameKey, newName); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageWrite, "persist name", err)
	}

	c.mutate(func(s *session.State) {
		s.DisplayName = newName
		s.StatusMessage = "Name updated"
	})
	return nil
}
