package database

import (
	"net/http"
	"time"
)

// CachedResponse is one stored HTTP response.
type CachedResponse struct {
	Key        string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

func (c *CachedResponse) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
