package api

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// sessionTokenTTL bounds how long a minted session token stays valid.
const sessionTokenTTL = 30 * 24 * time.Hour

// SessionClaims is the JWT payload minted on successful authentication. The
// mobile app presents it as a bearer token on profile and logout routes.
type SessionClaims struct {
	Username string `json:"username"`
	Guest    bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens with an HMAC secret.
type TokenIssuer struct {
	secret []byte
	clock  func() time.Time
}

// NewTokenIssuer creates a token issuer for the given secret.
func NewTokenIssuer(secret []byte, clock func() time.Time) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, apperrors.New(apperrors.CodeUnknown, "session token secret is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &TokenIssuer{secret: secret, clock: clock}, nil
}

// Issue mints a session token for a signed-in identity.
func (t *TokenIssuer) Issue(username string, guest bool) (string, error) {
	now := t.clock()
	claims := &SessionClaims{
		Username: username,
		Guest:    guest,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnknown, "sign session token", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns its claims.
func (t *TokenIssuer) Verify(tokenString string) (*SessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, apperrors.New(apperrors.CodeSessionTokenInvalid, "session token is required")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSessionTokenInvalid, "parse session token", err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Username == "" {
		return nil, apperrors.New(apperrors.CodeSessionTokenInvalid, "session token is invalid")
	}
	return claims, nil
}
