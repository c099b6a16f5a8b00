package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/checkinapp/checkin/internal/platform/errors"
)

// DefaultTimeout bounds every backend request. There is no retry here; the
// controller's cascade decides what a failed attempt means.
const DefaultTimeout = 30 * time.Second

// Client is the JSON-over-HTTP implementation of AuthService.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type phoneResponse struct {
	Exists bool `json:"exists"`
}

// Login attempts a username/password login.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	return c.postAuth(ctx, "/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// Register attempts to create an account with a username/password pair.
func (c *Client) Register(ctx context.Context, username, password string) (AuthResult, error) {
	return c.postAuth(ctx, "/v1/auth/register", map[string]string{
		"username": username,
		"password": password,
	})
}

// SocialAuth attempts a social-identity login for an existing account.
func (c *Client) SocialAuth(ctx context.Context, username string) (AuthResult, error) {
	return c.postAuth(ctx, "/v1/auth/social", map[string]string{
		"username": username,
	})
}

// SocialRegister creates an account for a social identity the backend does
// not know yet.
func (c *Client) SocialRegister(ctx context.Context, username, displayName string) (AuthResult, error) {
	return c.postAuth(ctx, "/v1/auth/social/register", map[string]string{
		"username": username,
		"name":     displayName,
	})
}

// CheckPhone reports whether the account has a phone number on file.
func (c *Client) CheckPhone(ctx context.Context, username string) (PhoneStatus, error) {
	var decoded phoneResponse
	if err := c.post(ctx, "/v1/auth/phone/check", map[string]string{"username": username}, &decoded); err != nil {
		return PhoneStatus{}, err
	}
	return PhoneStatus{Exists: decoded.Exists}, nil
}

// UpdatePhone stores a phone number for the account.
func (c *Client) UpdatePhone(ctx context.Context, username, phone string) (AuthResult, error) {
	return c.postAuth(ctx, "/v1/auth/phone/update", map[string]string{
		"username": username,
		"phone":    phone,
	})
}

func (c *Client) postAuth(ctx context.Context, path string, payload map[string]string) (AuthResult, error) {
	var decoded authResponse
	if err := c.post(ctx, path, payload, &decoded); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Success: decoded.Success, Message: decoded.Message}, nil
}

// post sends a JSON request and decodes a JSON response into out.
//
// 2xx and 4xx bodies are decoded: the backend reports explicit negative
// outcomes as {success:false} with a 4xx status. Anything else, including
// timeouts and malformed bodies, becomes a transport error.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAccountTransport, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAccountTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAccountTransport, "call backend", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.New(apperrors.CodeAccountTransport,
			fmt.Sprintf("backend returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.CodeAccountTransport, "decode response", err)
	}
	return nil
}

var _ AuthService = (*Client)(nil)
