package controller

import (
	"context"
	"fmt"
	"log"

	"github.com/checkinapp/checkin/internal/account/identity"
	"github.com/checkinapp/checkin/internal/account/session"
	"github.com/checkinapp/checkin/internal/account/store"
)

// bootstrap restores session state from the durable store.
//
// Precedence: a complete real-account session wins, then the guest flag,
// then logged out. The store mirrors fields under separate keys, so any
// subset may be present; a guest flag with no stored guest username gets a
// freshly generated one.
func (c *Controller) bootstrap(ctx context.Context) error {
	state := session.LoggedOut()

	username, hasUsername, err := c.cfg.Store.Get(ctx, store.KeyLoggedInUsername)
	if err != nil {
		return fmt.Errorf("read stored username: %w", err)
	}
	displayName, hasName, err := c.cfg.Store.Get(ctx, store.KeyLoggedInName)
	if err != nil {
		return fmt.Errorf("read stored name: %w", err)
	}

	switch {
	case hasUsername && hasName && username != "" && displayName != "":
		state.Authenticated = true
		state.Username = username
		state.DisplayName = displayName
		state.FirstTimeUser = false
		state.StatusMessage = statusWelcomeBack

	default:
		guestFlag, _, err := c.cfg.Store.Get(ctx, store.KeyIsGuestMode)
		if err != nil {
			return fmt.Errorf("read guest flag: %w", err)
		}
		if guestFlag == "true" {
			guestUsername, ok, err := c.cfg.Store.Get(ctx, store.KeyGuestUsername)
			if err != nil {
				return fmt.Errorf("read guest username: %w", err)
			}
			if !ok || guestUsername == "" {
				guestUsername = identity.GuestUsername(c.cfg.IntN)
				if err := c.cfg.Store.Set(ctx, store.KeyGuestUsername, guestUsername); err != nil {
					log.Printf("account: persist regenerated guest username: %v", err)
				}
			}
			guestName, ok, err := c.cfg.Store.Get(ctx, store.KeyGuestName)
			if err != nil {
				return fmt.Errorf("read guest name: %w", err)
			}
			if !ok || guestName == "" {
				guestName = "Guest"
			}

			state.Authenticated = true
			state.GuestMode = true
			state.Username = guestUsername
			state.DisplayName = guestName
			state.FirstTimeUser = false
			state.StatusMessage = statusGuestBrowsing
		} else {
			used, _, err := c.cfg.Store.Get(ctx, store.KeyHasUsedAppBefore)
			if err != nil {
				return fmt.Errorf("read first-run flag: %w", err)
			}
			state.FirstTimeUser = used != "true"
		}
	}

	// Restored independently of which branch won above.
	if raw, ok, err := c.cfg.Store.Get(ctx, store.KeyLastUsernameChange); err != nil {
		return fmt.Errorf("read last username change: %w", err)
	} else if ok {
		if at, parsed := parseMillis(raw); parsed {
			state.LastUsernameChangeAt = at
		}
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	return nil
}
