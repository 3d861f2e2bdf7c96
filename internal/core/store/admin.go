package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quotafence/quotafence/internal/core"
)

// QuotaQuery selects stored quota counters for admin operations.
type QuotaQuery struct {
	All    bool
	Key    string
	Prefix string
}

func (q QuotaQuery) Validate() error {
	if q.All {
		return nil
	}
	if strings.TrimSpace(q.Key) != "" {
		return nil
	}
	if strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --key, or --prefix")
}

func (q QuotaQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.All {
		return "", nil, nil
	}
	if key := strings.TrimSpace(q.Key); key != "" {
		return "WHERE key = ?", []any{key}, nil
	}
	prefix := strings.TrimSpace(q.Prefix)
	if prefix == "" {
		return "", nil, errors.New("prefix is required")
	}
	return "WHERE key LIKE ?", []any{prefix + "%"}, nil
}

// ListQuotas returns stored counters matching the query, including expired
// rows not yet replaced.
func (s *Store) ListQuotas(ctx context.Context, q QuotaQuery) ([]core.QuotaRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT key, value, expires_at
		FROM quota_counters
		%s
		ORDER BY key
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list quotas: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	records := []core.QuotaRecord{}
	for rows.Next() {
		var (
			key       string
			value     string
			expiresAt sql.NullInt64
		)
		if err := rows.Scan(&key, &value, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan quotas: %w", err)
		}

		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			count = 0
		}

		record := core.QuotaRecord{Key: key, Count: count}
		if expiresAt.Valid {
			expiry := time.UnixMilli(expiresAt.Int64).UTC()
			record.ExpiresAt = &expiry
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotas: %w", err)
	}

	return records, nil
}

// CountQuotas returns how many stored counters match the query.
func (s *Store) CountQuotas(ctx context.Context, q QuotaQuery) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM quota_counters
		%s
	`, where), args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count quotas: %w", err)
	}
	return count, nil
}

// ResetQuotas deletes stored counters matching the query and returns the
// number removed.
func (s *Store) ResetQuotas(ctx context.Context, q QuotaQuery) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM quota_counters
		%s
	`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset quotas: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset quotas: %w", err)
	}
	return affected, nil
}
