package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/checkinapp/checkin/internal/account/store"
)

// PutUserCacheEntry stores cached per-user data under a cache key.
func (s *Store) PutUserCacheEntry(ctx context.Context, username, cacheKey, payloadJSON string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	username = strings.TrimSpace(username)
	cacheKey = strings.TrimSpace(cacheKey)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if cacheKey == "" {
		return fmt.Errorf("cache key is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO user_cache (username, cache_key, payload_json, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (username, cache_key) DO UPDATE SET payload_json = excluded.payload_json, created_at = excluded.created_at
`, username, cacheKey, payloadJSON, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put user cache entry: %w", err)
	}
	return nil
}

// GetUserCacheEntry returns cached per-user data for a cache key.
func (s *Store) GetUserCacheEntry(ctx context.Context, username, cacheKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var payload string
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload_json FROM user_cache WHERE username = ? AND cache_key = ?`,
		strings.TrimSpace(username), strings.TrimSpace(cacheKey))
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("get user cache entry: %w", err)
	}
	return payload, nil
}

// ClearUserCache drops all cached data for one user. Logout uses this so a
// following sign-in never sees another account's cached data.
func (s *Store) ClearUserCache(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM user_cache WHERE username = ?`, username); err != nil {
		return fmt.Errorf("clear user cache: %w", err)
	}
	return nil
}
