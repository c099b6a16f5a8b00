// Package session defines the in-memory account session record.
package session

import "time"

// State is the single authoritative record of who is using the app right now.
//
// It is mutated only by the account controller, always as a whole-record
// replacement, so observers never see a partially updated session.
type State struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`

	// StatusMessage is the human-readable outcome of the last operation,
	// meant for direct UI display. It is not an error code.
	StatusMessage string `json:"status_message"`

	Loading       bool `json:"loading"`
	FirstTimeUser bool `json:"first_time_user"`
	GuestMode     bool `json:"guest_mode"`

	LastUsernameChangeAt time.Time `json:"last_username_change_at,omitzero"`
	HasPhoneNumber       bool      `json:"has_phone_number"`
}

// LoggedOut returns the default logged-out session state.
func LoggedOut() State {
	return State{}
}

// SignedIn reports whether the session carries a usable identity, guest or real.
func (s State) SignedIn() bool {
	return s.Authenticated && s.Username != ""
}
