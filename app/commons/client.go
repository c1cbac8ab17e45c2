// Package commons talks to the MediaWiki API of the destination repository.
package commons

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/lysyi3m/wiki-api-connector/app/fetch"
)

var ErrUploadRejected = errors.New("upload rejected")

// APIError is an error object returned by the MediaWiki API.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki API error %s: %s", e.Code, e.Info)
}

type Client struct {
	apiURL     string
	httpClient *http.Client
	userAgent  string
	token      string
}

// NewClient returns a client for the API at apiURL. A non-empty token is sent
// as an OAuth bearer token.
func NewClient(apiURL string, httpClient *http.Client, userAgent, token string) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: httpClient,
		userAgent:  userAgent,
		token:      token,
	}
}

type apiResponse struct {
	Error *APIError `json:"error"`
	Query struct {
		General struct {
			SiteName  string `json:"sitename"`
			Generator string `json:"generator"`
		} `json:"general"`
		AllImages []struct {
			Name string `json:"name"`
		} `json:"allimages"`
		Tokens struct {
			CSRFToken string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
	Entities map[string]struct {
		Statements json.RawMessage `json:"statements"`
	} `json:"entities"`
	Upload *struct {
		Result   string          `json:"result"`
		Filename string          `json:"filename"`
		Warnings json.RawMessage `json:"warnings"`
	} `json:"upload"`
}

// CheckSite verifies the API is reachable and returns the site name.
func (c *Client) CheckSite(ctx context.Context) (string, error) {
	var resp apiResponse
	err := c.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"siteinfo"},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to reach destination API: %w", err)
	}
	if resp.Query.General.SiteName == "" {
		return "", fmt.Errorf("destination API returned no site information")
	}
	return resp.Query.General.SiteName, nil
}

// FindBySHA1 returns the names of files whose content has the given
// hex-encoded SHA-1.
func (c *Client) FindBySHA1(ctx context.Context, sha1 string) ([]string, error) {
	var resp apiResponse
	err := c.get(ctx, url.Values{
		"action": {"query"},
		"list":   {"allimages"},
		"aisha1": {sha1},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to query files by hash: %w", err)
	}

	names := make([]string, 0, len(resp.Query.AllImages))
	for _, img := range resp.Query.AllImages {
		names = append(names, img.Name)
	}
	return names, nil
}

// CSRFToken fetches a fresh edit token.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	var resp apiResponse
	err := c.get(ctx, url.Values{
		"action": {"query"},
		"meta":   {"tokens"},
		"type":   {"csrf"},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to fetch csrf token: %w", err)
	}
	if resp.Query.Tokens.CSRFToken == "" {
		return "", fmt.Errorf("destination API returned no csrf token")
	}
	return resp.Query.Tokens.CSRFToken, nil
}

// ExistingProperties returns the properties that already have statements on
// the media entity mediaID. A missing entity has none.
func (c *Client) ExistingProperties(ctx context.Context, mediaID string) (map[string]bool, error) {
	var resp apiResponse
	err := c.get(ctx, url.Values{
		"action": {"wbgetentities"},
		"ids":    {mediaID},
		"props":  {"claims"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entity %s: %w", mediaID, err)
	}

	properties := make(map[string]bool)
	entity, ok := resp.Entities[mediaID]
	// an entity without statements serializes them as an empty array
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(entity.Statements), []byte("{")) {
		return properties, nil
	}

	var statements map[string][]json.RawMessage
	if err := json.Unmarshal(entity.Statements, &statements); err != nil {
		return nil, fmt.Errorf("failed to decode statements of %s: %w", mediaID, err)
	}
	for property, list := range statements {
		if len(list) > 0 {
			properties[property] = true
		}
	}
	return properties, nil
}

type UploadRequest struct {
	Filename string
	Text     string // initial page text (file description)
	Comment  string // edit summary
	File     io.Reader
}

// Upload sends the file with action=upload. Warnings (such as an existing
// name) are reported as ErrUploadRejected.
func (c *Client) Upload(ctx context.Context, req UploadRequest) error {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := [][2]string{
		{"action", "upload"},
		{"format", "json"},
		{"formatversion", "2"},
		{"filename", req.Filename},
		{"text", req.Text},
		{"comment", req.Comment},
		{"token", token},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return fmt.Errorf("failed to read staged file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var resp apiResponse
	if err := c.do(httpReq, &resp); err != nil {
		return fmt.Errorf("failed to upload %s: %w", req.Filename, err)
	}

	if resp.Upload == nil {
		return fmt.Errorf("%w: %s: empty upload result", ErrUploadRejected, req.Filename)
	}
	if resp.Upload.Result != "Success" {
		return fmt.Errorf("%w: %s: result %s, warnings %s",
			ErrUploadRejected, req.Filename, resp.Upload.Result, string(resp.Upload.Warnings))
	}

	slog.Debug("Upload accepted", "filename", resp.Upload.Filename)
	return nil
}

// PostForm sends a form-encoded POST, as used by write actions such as
// wbcreateclaim.
func (c *Client) PostForm(ctx context.Context, form url.Values) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp apiResponse
	return c.do(httpReq, &resp)
}

func (c *Client) get(ctx context.Context, params url.Values, out *apiResponse) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out *apiResponse) error {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &fetch.StatusError{URL: c.apiURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	if out.Error != nil {
		return out.Error
	}
	return nil
}
