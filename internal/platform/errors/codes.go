// Package errors provides structured error handling for the account service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeAccountEmptyUsername    Code = "ACCOUNT_EMPTY_USERNAME"
	CodeAccountEmptyDisplayName Code = "ACCOUNT_EMPTY_DISPLAY_NAME"
	CodeAccountInvalidUsername  Code = "ACCOUNT_INVALID_USERNAME"
	CodeAccountInvalidName      Code = "ACCOUNT_INVALID_NAME"
	CodeAccountInvalidPhone     Code = "ACCOUNT_INVALID_PHONE"

	// Remote/auth flow errors
	CodeAccountTransport        Code = "ACCOUNT_TRANSPORT"
	CodeAccountCascadeExhausted Code = "ACCOUNT_CASCADE_EXHAUSTED"
	CodeAccountProvider         Code = "ACCOUNT_PROVIDER"
	CodeAccountSocialRejected   Code = "ACCOUNT_SOCIAL_REJECTED"

	// Policy errors
	CodeAccountUsernameRateLimited Code = "ACCOUNT_USERNAME_RATE_LIMITED"

	// Session/token errors
	CodeSessionTokenInvalid Code = "SESSION_TOKEN_INVALID"
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"

	// Storage errors
	CodeStorageWrite Code = "STORAGE_WRITE"
	CodeNotFound     Code = "NOT_FOUND"

	// API surface errors
	CodeBadRequest Code = "BAD_REQUEST"
)

// HTTPStatus maps domain codes to HTTP status codes for the API surface.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeAccountEmptyUsername,
		CodeAccountEmptyDisplayName,
		CodeAccountInvalidUsername,
		CodeAccountInvalidName,
		CodeAccountInvalidPhone,
		CodeBadRequest:
		return http.StatusBadRequest

	case CodeAccountUsernameRateLimited:
		return http.StatusTooManyRequests

	case CodeSessionTokenInvalid:
		return http.StatusUnauthorized

	case CodeNotFound, CodeSessionNotFound:
		return http.StatusNotFound

	case CodeAccountTransport:
		return http.StatusBadGateway

	case CodeAccountCascadeExhausted, CodeAccountProvider, CodeAccountSocialRejected:
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
