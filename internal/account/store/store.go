// Package store defines durable key/value persistence for account state.
//
// Session fields are mirrored under separate keys rather than as one
// serialized blob, so a partially written store (for example a guest flag
// with no stored guest username) still bootstraps.
package store

import (
	"context"

	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// Keys used by the account controller. These names are load-bearing: they
// match the legacy client's persisted keys so upgrades keep existing sessions.
const (
	KeyLoggedInUsername   = "LoggedInUsername"
	KeyLoggedInName       = "LoggedInName"
	KeyHasUsedAppBefore   = "HasUsedAppBefore"
	KeyIsGuestMode        = "IsGuestMode"
	KeyGuestUsername      = "GuestUsername"
	KeyGuestName          = "GuestName"
	KeyLastUsernameChange = "LastUsernameChange"
)

// ErrNotFound indicates a key is absent from the store.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "key not found")

// Store is durable key/value persistence with process-lifetime scope.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
