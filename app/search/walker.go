// Package search walks paginated catalog search results and yields the
// record identifiers they list.
package search

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/wiki-api-connector/app/fetch"
)

const (
	DefaultMaxPages     = 25
	DefaultItemSelector = "dl.details.edan-url"
	DefaultNextSelector = "div.pagination ul li a"
	DefaultNextText     = "next"
)

type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

type Walker struct {
	fetcher Fetcher

	// MaxPages bounds the number of pages fetched; zero means no bound.
	MaxPages     int
	ItemSelector string
	NextSelector string
	NextText     string
}

func NewWalker(fetcher Fetcher) *Walker {
	return &Walker{
		fetcher:      fetcher,
		MaxPages:     DefaultMaxPages,
		ItemSelector: DefaultItemSelector,
		NextSelector: DefaultNextSelector,
		NextText:     DefaultNextText,
	}
}

// Walk yields identifiers page by page starting at seed. Pages are fetched
// lazily as the sequence is consumed, no page URL is fetched twice and each
// identifier is yielded once. A fetch failure is yielded once and ends the
// walk.
func (w *Walker) Walk(ctx context.Context, seed string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		visited := make(map[string]bool)
		seen := make(map[string]bool)
		pageURL := seed

		for page := 1; pageURL != ""; page++ {
			if w.MaxPages > 0 && page > w.MaxPages {
				slog.Info("Page limit reached", "max_pages", w.MaxPages)
				return
			}
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			visited[pageURL] = true

			ids, next, err := w.fetchPage(ctx, pageURL)
			if err != nil {
				yield("", fmt.Errorf("page %d: %w", page, err))
				return
			}
			slog.Debug("Search page parsed", "page", page, "url", pageURL, "identifiers", len(ids))

			for _, id := range ids {
				if seen[id] {
					continue
				}
				seen[id] = true
				if !yield(id, nil) {
					return
				}
			}

			if visited[next] {
				slog.Debug("Next page already visited", "url", next)
				return
			}
			pageURL = next
		}
	}
}

// fetchPage returns the identifiers on one page and the resolved URL of the
// next page, or "" when there is none.
func (w *Walker) fetchPage(ctx context.Context, pageURL string) ([]string, string, error) {
	resp, err := w.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &fetch.StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse search page: %w", err)
	}

	var ids []string
	doc.Find(w.ItemSelector).Each(func(_ int, s *goquery.Selection) {
		if id := identifierFrom(s.Find("dd").First().Text()); id != "" {
			ids = append(ids, id)
		}
	})

	return ids, w.nextURL(doc, resp.URL), nil
}

func (w *Walker) nextURL(doc *goquery.Document, current string) string {
	var href string
	doc.Find(w.NextSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.Text()), w.NextText) {
			href, _ = s.Attr("href")
			return false
		}
		return true
	})
	if href == "" {
		return ""
	}

	base, err := url.Parse(current)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		slog.Debug("Unparsable next link", "href", href, "error", err)
		return ""
	}
	return base.ResolveReference(ref).String()
}

// identifierFrom keeps the part after the last ":" of an EDAN URL such as
// "edanmdm:nmnhbotany_2546215".
func identifierFrom(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndex(text, ":"); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}
