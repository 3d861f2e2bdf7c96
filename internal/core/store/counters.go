package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quotafence/quotafence/internal/core/kv"
)

// Get returns the stored counter value for key. Expired rows read as absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.DB == nil {
		return "", false, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errors.New("key is required")
	}

	var (
		value     string
		expiresAt sql.NullInt64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT value, expires_at
		FROM quota_counters
		WHERE key = ?
	`, key)

	if err := row.Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetch quota counter: %w", err)
	}

	if expired(expiresAt, s.now()) {
		return "", false, nil
	}

	return value, true, nil
}

// Set stores value under key with the given ttl. A ttl <= 0 stores without
// expiry.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is required")
	}

	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.now().Add(ttl).UnixMilli(), Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO quota_counters (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("store quota counter: %w", err)
	}

	return nil
}

// Increment adds one to the counter at key inside a transaction, creating
// it at 1 with ttl when absent or expired. The expiry of a live counter is
// never touched, keeping the window anchored to first consumption.
func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return 0, errors.New("key is required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin increment: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	var (
		value     string
		expiresAt sql.NullInt64
	)

	now := s.now()
	fresh := true

	row := tx.QueryRowContext(ctx, `
		SELECT value, expires_at
		FROM quota_counters
		WHERE key = ?
	`, key)
	switch err := row.Scan(&value, &expiresAt); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, fmt.Errorf("read quota counter: %w", err)
	default:
		fresh = expired(expiresAt, now)
	}

	var count int64
	if fresh {
		count = 1
		var freshExpiry sql.NullInt64
		if ttl > 0 {
			freshExpiry = sql.NullInt64{Int64: now.Add(ttl).UnixMilli(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quota_counters (key, value, expires_at)
			VALUES (?, '1', ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				expires_at = excluded.expires_at
		`, key, freshExpiry)
	} else {
		parsed, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil {
			parsed = 0
		}
		count = parsed + 1
		_, err = tx.ExecContext(ctx, `
			UPDATE quota_counters SET value = ? WHERE key = ?
		`, strconv.FormatInt(count, 10), key)
	}
	if err != nil {
		return 0, fmt.Errorf("increment quota counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit increment: %w", err)
	}

	return count, nil
}

func expired(expiresAt sql.NullInt64, now time.Time) bool {
	return expiresAt.Valid && now.UnixMilli() >= expiresAt.Int64
}

var _ kv.Store = (*Store)(nil)
