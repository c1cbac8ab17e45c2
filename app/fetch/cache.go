package fetch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/wiki-api-connector/app/database"
)

// CacheTransport serves GET responses with status 200 or 404 from a store
// until they expire. Other methods and statuses pass through uncached.
type CacheTransport struct {
	Base  http.RoundTripper
	Store database.ResponseStore
	TTL   time.Duration

	now func() time.Time
}

func NewCacheTransport(base http.RoundTripper, store database.ResponseStore, ttl time.Duration) *CacheTransport {
	return &CacheTransport{Base: base, Store: store, TTL: ttl, now: time.Now}
}

// CacheKey identifies a request in the store.
func CacheKey(method, url string) string {
	sum := sha256.Sum256([]byte(method + " " + url))
	return hex.EncodeToString(sum[:])
}

func (t *CacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.Base.RoundTrip(req)
	}

	ctx := req.Context()
	url := req.URL.String()
	key := CacheKey(req.Method, url)
	now := t.clock()

	entry, err := t.Store.Get(ctx, key, now)
	if err != nil {
		slog.Warn("Response cache lookup failed", "url", url, "error", err)
	}
	if entry != nil {
		slog.Debug("Response cache hit", "url", url, "status", entry.StatusCode)
		return cachedResponse(req, entry), nil
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	err = t.Store.Put(ctx, &database.CachedResponse{
		Key:        key,
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		CreatedAt:  now,
		ExpiresAt:  now.Add(t.TTL),
	})
	if err != nil {
		slog.Warn("Response cache store failed", "url", url, "error", err)
	}

	return resp, nil
}

func (t *CacheTransport) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

func cachedResponse(req *http.Request, entry *database.CachedResponse) *http.Response {
	header := entry.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", entry.StatusCode, http.StatusText(entry.StatusCode)),
		StatusCode:    entry.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}
}
