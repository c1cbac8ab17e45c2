package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ResponseRepository handles database operations for cached HTTP responses
type ResponseRepository struct {
	db *DB
}

func NewResponseRepository(db *DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func (r *ResponseRepository) Get(ctx context.Context, key string, now time.Time) (*CachedResponse, error) {
	var (
		entry     CachedResponse
		header    []byte
		createdAt int64
		expiresAt int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT cache_key, url, status_code, header, body, created_at, expires_at
		FROM http_responses
		WHERE cache_key = ? AND expires_at > ?
	`, key, now.Unix()).Scan(&entry.Key, &entry.URL, &entry.StatusCode, &header, &entry.Body, &createdAt, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached response: %w", err)
	}

	if len(header) > 0 {
		var h map[string][]string
		if err := msgpack.Unmarshal(header, &h); err != nil {
			return nil, fmt.Errorf("failed to decode cached header: %w", err)
		}
		entry.Header = http.Header(h)
	}
	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)

	return &entry, nil
}

// Put inserts or replaces the entry with the same key.
func (r *ResponseRepository) Put(ctx context.Context, entry *CachedResponse) error {
	header, err := msgpack.Marshal(map[string][]string(entry.Header))
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO http_responses (cache_key, url, status_code, header, body, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			url = excluded.url,
			status_code = excluded.status_code,
			header = excluded.header,
			body = excluded.body,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, entry.Key, entry.URL, entry.StatusCode, header, entry.Body, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store cached response: %w", err)
	}

	return nil
}

// PurgeExpired deletes entries that expired at or before now.
func (r *ResponseRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM http_responses WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired responses: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

func (r *ResponseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM http_responses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cached responses: %w", err)
	}
	return count, nil
}
