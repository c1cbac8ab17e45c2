package database

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *ResponseRepository {
	t.Helper()
	db, err := NewConnection(filepath.Join(t.TempDir(), "cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResponseRepository(db)
}

func TestResponseRepositoryPutGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	entry := &CachedResponse{
		Key:        "k1",
		URL:        "https://example.org/a",
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(`{"a":1}`),
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	require.NoError(t, repo.Put(ctx, entry))

	got, err := repo.Get(ctx, "k1", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.URL, got.URL)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, entry.Body, got.Body)
	assert.True(t, got.ExpiresAt.Equal(entry.ExpiresAt))

	missing, err := repo.Get(ctx, "k2", now)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResponseRepositoryExpiry(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, repo.Put(ctx, &CachedResponse{Key: "old", URL: "u", StatusCode: 404, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Put(ctx, &CachedResponse{Key: "new", URL: "u", StatusCode: 200, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	later := now.Add(2 * time.Minute)
	got, err := repo.Get(ctx, "old", later)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must not be served")

	purged, err := repo.PurgeExpired(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResponseRepositoryPutReplaces(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, repo.Put(ctx, &CachedResponse{Key: "k", URL: "u", StatusCode: 404, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Put(ctx, &CachedResponse{Key: "k", URL: "u", StatusCode: 200, Body: []byte("x"), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	got, err := repo.Get(ctx, "k", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 200, got.StatusCode)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewConnectionIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")

	db, err := NewConnection(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewConnection(path)
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}
