// Package catalog queries institutional metadata APIs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ohler55/ojg/oj"

	"github.com/lysyi3m/wiki-api-connector/app/fetch"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

var ErrUnexpectedStatus = errors.New("unexpected catalog API status")

type Client struct {
	fetcher *fetch.Client
}

func NewClient(fetcher *fetch.Client) *Client {
	return &Client{fetcher: fetcher}
}

// Lookup fetches and parses the document for identifier. A 404 yields a nil
// document and no error.
func (c *Client) Lookup(ctx context.Context, u *unit.Unit, identifier string) (any, error) {
	url := u.API.URL(identifier)

	resp, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		slog.Debug("Catalog API has no record", "unit", u.Name, "identifier", identifier)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedStatus, &fetch.StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	doc, err := oj.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog response for %s: %w", identifier, err)
	}
	return doc, nil
}
