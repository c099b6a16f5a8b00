// Package identity provides account identity values and generation helpers.
package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

var (
	// ErrEmptyUsername indicates a missing username.
	ErrEmptyUsername = apperrors.New(apperrors.CodeAccountEmptyUsername, "username is required")
	// ErrEmptyDisplayName indicates a missing display name.
	ErrEmptyDisplayName = apperrors.New(apperrors.CodeAccountEmptyDisplayName, "name is required")
	// ErrInvalidUsername indicates a username outside the allowed format.
	ErrInvalidUsername = apperrors.New(apperrors.CodeAccountInvalidUsername, "username must be 3-20 letters, digits, or underscores")
	// ErrInvalidDisplayName indicates a display name outside the allowed length.
	ErrInvalidDisplayName = apperrors.New(apperrors.CodeAccountInvalidName, "name must be 2-50 characters")

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
)

// Identity is a (username, display name) pair produced by a successful auth
// path. It is transient: callers fold it into session state immediately.
type Identity struct {
	Username    string
	DisplayName string
}

// Validate reports whether both identity halves are present.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	return nil
}

// ValidateUsername enforces the handle format used for profile changes.
func ValidateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateDisplayName enforces the display-name length policy.
func ValidateDisplayName(s string) error {
	if n := len(s); n < 2 || n > 50 {
		return ErrInvalidDisplayName
	}
	return nil
}

// CredentialCandidates is the ordered list of passwords tried during the
// login/registration cascade, preserved from the legacy client for
// behavioral compatibility. The trailing empty string is never sent (the API
// rejects empty passwords) but marks the end of real candidates before the
// social-auth fallback.
//
// This is a known security smell carried over from the legacy system, not a
// credential store. Do not reorder or extend it.
var CredentialCandidates = []string{"12345678", "123456", "password", "12345", ""}

// GuestUsername builds a guest handle from a random integer source.
//
// intn must behave like rand.IntN: return a value in [0, n). The resulting
// handle is always "guest" followed by a 6-digit zero-padded number in
// [1, 999999]. Collisions are accepted as-is.
func GuestUsername(intn func(n int) int) string {
	return fmt.Sprintf("guest%06d", intn(999999)+1)
}

var (
	randomAdjectives = []string{
		"swift", "quiet", "bright", "lucky", "mellow", "bold",
		"wandering", "cosmic", "electric", "velvet", "golden", "midnight",
	}
	randomNouns = []string{
		"falcon", "otter", "comet", "harbor", "ember", "willow",
		"drifter", "signal", "meadow", "lantern", "voyager", "echo",
	}
)

// RandomIdentity generates a pseudo-random identity for the onboarding skip
// path. The username gets a timestamp suffix for uniqueness; the display name
// is the title-cased word pair.
func RandomIdentity(now func() time.Time, intn func(n int) int) Identity {
	adjective := randomAdjectives[intn(len(randomAdjectives))]
	noun := randomNouns[intn(len(randomNouns))]
	suffix := now().Unix() % 1_000_000

	return Identity{
		Username:    fmt.Sprintf("%s%s%d", adjective, noun, suffix),
		DisplayName: titleWord(adjective) + " " + titleWord(noun),
	}
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
