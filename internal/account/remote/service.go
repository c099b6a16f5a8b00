// Package remote defines the CheckIn backend contract and its HTTP client.
package remote

import "context"

// AuthResult is the structured outcome of an auth operation.
//
// A nil error with Success=false is an explicit negative answer from the
// backend; a non-nil error is a transport-level failure. The login cascade
// treats both as "try the next candidate".
type AuthResult struct {
	Success bool
	Message string
}

// PhoneStatus reports whether an account has a phone number on file.
type PhoneStatus struct {
	Exists bool
}

// AuthService is the remote account backend consumed by the controller.
type AuthService interface {
	Login(ctx context.Context, username, password string) (AuthResult, error)
	Register(ctx context.Context, username, password string) (AuthResult, error)
	SocialAuth(ctx context.Context, username string) (AuthResult, error)
	// SocialRegister is the register variant of SocialAuth, used when the
	// backend answers "user not found" for a social identity.
	SocialRegister(ctx context.Context, username, displayName string) (AuthResult, error)
	CheckPhone(ctx context.Context, username string) (PhoneStatus, error)
	UpdatePhone(ctx context.Context, username, phone string) (AuthResult, error)
}
