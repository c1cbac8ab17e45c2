package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/wiki-api-connector/app/fetch"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

func newTestUnit(baseURL string) *unit.Unit {
	return &unit.Unit{
		Name: "test",
		API:  unit.API{URLTemplate: baseURL + "/content/{}?api_key={}", Key: "KEY"},
	}
}

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/found":
			assert.Equal(t, "KEY", r.URL.Query().Get("api_key"))
			w.Write([]byte(`{"response":{"title":"Etlingera sp."}}`))
		case "/content/broken":
			w.Write([]byte(`{"response":`))
		case "/content/error":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(fetch.NewClient(fetch.Options{Timeout: 5 * time.Second}))
	u := newTestUnit(server.URL)
	ctx := context.Background()

	doc, err := client.Lookup(ctx, u, "found")
	require.NoError(t, err)
	response := doc.(map[string]any)["response"].(map[string]any)
	assert.Equal(t, "Etlingera sp.", response["title"])

	doc, err = client.Lookup(ctx, u, "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = client.Lookup(ctx, u, "error")
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	var statusErr *fetch.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	_, err = client.Lookup(ctx, u, "broken")
	assert.Error(t, err)
}
