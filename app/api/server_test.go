package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

const testConfig = `
units:
  - unit:
      name: nmnh
      api:
        api_url: "https://example.org/{}"
      commons_template:
        type: Information
        fields:
          title: { jsonpath: "$.title" }
          _image: { jsonpath: "$.image" }
  - unit:
      name: saam
      api:
        api_url: "https://example.org/{}"
      commons_template:
        type: Artwork
        fields:
          title: { jsonpath: "$.title" }
      commons_wikibase:
        statements:
          P7851: { jsonpath: "$.id" }
`

type fakeCatalog struct{}

func (fakeCatalog) Lookup(_ context.Context, _ *unit.Unit, id string) (any, error) {
	switch id {
	case "found":
		return oj.ParseString(`{"id": "found", "title": "Etlingera sp.", "image": "https://ids.si.edu/ids/download?id=NMNH-1.jpg"}`)
	case "broken":
		return nil, errors.New("catalog unavailable")
	default:
		return nil, nil
	}
}

type fakeCache struct{}

func (fakeCache) Count(context.Context) (int, error) { return 7, nil }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	registry, err := unit.Parse([]byte(testConfig))
	require.NoError(t, err)
	return NewServer(NewHandler(registry, fakeCatalog{}, fakeCache{}, "test"))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newTestServer(t), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["units"])
	assert.Equal(t, float64(7), body["cached_responses"])
}

func TestListUnits(t *testing.T) {
	w := get(t, newTestServer(t), "/units")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Units []map[string]any `json:"units"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "nmnh", body.Units[0]["name"])
	assert.Equal(t, "Artwork", body.Units[1]["template"])
}

func TestGetRecords(t *testing.T) {
	server := newTestServer(t)

	w := get(t, server, "/units/nmnh/records/found")
	require.Equal(t, http.StatusOK, w.Code)
	var recs []records.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Etlingera sp_ found NMNH-1.jpg", recs[0].CommonsFilename)

	// A fresh mapper per request: same filename twice
	w = get(t, server, "/units/nmnh/records/found")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	assert.Equal(t, "Etlingera sp_ found NMNH-1.jpg", recs[0].CommonsFilename)

	w = get(t, server, "/units/nmnh/records/absent")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = get(t, server, "/units/nmnh/records/broken")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = get(t, server, "/units/unknown/records/found")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetClaims(t *testing.T) {
	server := newTestServer(t)

	w := get(t, server, "/units/saam/claims/found")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"property":"P7851","value":"found"}]`, w.Body.String())

	w = get(t, server, "/units/nmnh/claims/found")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUnit(t *testing.T) {
	w := get(t, newTestServer(t), "/units/nmnh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"filename_order":["title","identifier","basefilename"]`)
}
