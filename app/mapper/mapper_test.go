package mapper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/wiki-api-connector/app/catalog"
	"github.com/lysyi3m/wiki-api-connector/app/fetch"
	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

const nmnhDocument = `{
  "status": 200,
  "response": {
    "id": "edanmdm:nmnhbotany_2546215",
    "title": "Etlingera sp.",
    "content": {
      "descriptiveNonRepeating": {
        "record_link": "http://n2t.net/ark:/65665/3abc",
        "online_media": {
          "media": [
            {"content": "https://ids.si.edu/ids/download?id=NMNH-00651834.jpg"},
            {"content": "https://ids.si.edu/ids/download?id=NMNH-00651835.jpg"}
          ]
        }
      },
      "freetext": {
        "name": [{"label": "Collector", "content": "W. J. Kress"}],
        "notes": [{"content": "Etlingera sp. specimen"}]
      },
      "indexedStructured": {"date": ["1998"]}
    }
  }
}`

const nmnhConfig = `
units:
  - unit:
      name: nmnh
      api:
        api_url: "%s/content/edanmdm:{}?api_key={}"
        api_key_string: DEMO_KEY
      commons_template:
        type: Information
        commons_filename_format: "title, identifier, basefilename"
        append: "{{Smithsonian}}"
        categories: "[[Category:Etlingera]]"
        fields:
          title: { jsonpath: "$.response.title" }
          _image: { jsonpath: "$.response.content.descriptiveNonRepeating.online_media.media[*].content" }
          description: { jsonpath: "$.response.content.freetext.notes[0].content" }
          date: { jsonpath: "$.response.content.indexedStructured.date[0]" }
          source: { jsonpath: "$.response.content.descriptiveNonRepeating.record_link", formatstring: "[%%s Smithsonian]" }
          author: { jsonpath: "$.response.content.freetext.name[0].content", append: "(collector)" }
          permission: { static: "CC0" }
      commons_wikibase:
        statements:
          P7851: { jsonpath: "$.response.id" }
          P275: { static: "Q6938433", entity_type: item }
          P170: { jsonpath: "$.response.content.creator" }
`

const nmnhDescription = `{{Information
 |description    = Etlingera sp. specimen
 |date           = 1998
 |source         = [http://n2t.net/ark:/65665/3abc Smithsonian]
 |author         = W. J. Kress (collector)
 |permission     = {{Cc-zero}}
 |other versions =
}}
{{Smithsonian}}

[[Category:Etlingera]]`

func loadUnit(t *testing.T, baseURL string) *unit.Unit {
	t.Helper()
	registry, err := unit.Parse([]byte(fmt.Sprintf(nmnhConfig, baseURL)))
	require.NoError(t, err)
	u, err := registry.Get("nmnh")
	require.NoError(t, err)
	return u
}

type fakeCatalog struct {
	docs  map[string]string
	err   error
	calls int
}

func (c *fakeCatalog) Lookup(_ context.Context, _ *unit.Unit, identifier string) (any, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	raw, ok := c.docs[identifier]
	if !ok {
		return nil, nil
	}
	return oj.ParseString(raw)
}

func TestMapEndToEnd(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.String()
		if r.URL.Path != "/content/edanmdm:nmnhbotany_2546215" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(nmnhDocument))
	}))
	defer server.Close()

	u := loadUnit(t, server.URL)
	m := New(catalog.NewClient(fetch.NewClient(fetch.Options{Timeout: 5 * time.Second})))

	recs, err := m.Map(context.Background(), u, "nmnhbotany_2546215")
	require.NoError(t, err)
	assert.Equal(t, "/content/edanmdm:nmnhbotany_2546215?api_key=DEMO_KEY", requested)

	require.Len(t, recs, 1)
	assert.Equal(t, records.Record{
		RecordID:        "nmnhbotany_2546215",
		SourceImageURL:  "https://ids.si.edu/ids/download?id=NMNH-00651834.jpg",
		CommonsFilename: "Etlingera sp_ nmnhbotany_2546215 NMNH-00651834.jpg",
		EditSummary:     "Uploaded by Wiki API Connector",
		Description:     nmnhDescription,
	}, recs[0])

	recs, err = m.Map(context.Background(), u, "nmnhbotany_0000000")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMapUniqueFilenames(t *testing.T) {
	u := loadUnit(t, "https://example.org")
	fake := &fakeCatalog{docs: map[string]string{"nmnhbotany_2546215": nmnhDocument}}
	m := New(fake)

	first, err := m.Map(context.Background(), u, "nmnhbotany_2546215")
	require.NoError(t, err)
	second, err := m.Map(context.Background(), u, "nmnhbotany_2546215")
	require.NoError(t, err)

	assert.Equal(t, "Etlingera sp_ nmnhbotany_2546215 NMNH-00651834.jpg", first[0].CommonsFilename)
	assert.Equal(t, "Etlingera sp_ nmnhbotany_2546215 NMNH-00651834 2.jpg", second[0].CommonsFilename)
}

func TestMapWithoutImageOrTitle(t *testing.T) {
	u := loadUnit(t, "https://example.org")
	fake := &fakeCatalog{docs: map[string]string{"bare": `{"response": {}}`}}

	recs, err := New(fake).Map(context.Background(), u, "bare")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "bare", recs[0].RecordID)
	assert.Empty(t, recs[0].SourceImageURL)
	assert.Empty(t, recs[0].CommonsFilename)
	assert.Contains(t, recs[0].Description, " |permission     = {{Cc-zero}}\n")
	assert.Contains(t, recs[0].Description, " |description    =\n")
}

func TestMapUnknownTitle(t *testing.T) {
	u := loadUnit(t, "https://example.org")
	fake := &fakeCatalog{docs: map[string]string{
		"x1": `{"response": {"content": {"descriptiveNonRepeating": {"online_media": {"media": [{"content": "https://example.org/a.jpg"}]}}}}}`,
	}}

	recs, err := New(fake).Map(context.Background(), u, "x1")
	require.NoError(t, err)
	assert.Equal(t, "Unknown x1 a.jpg", recs[0].CommonsFilename)

	for _, title := range []string{"", "   ", "...", "~~~", "_/_"} {
		doc := fmt.Sprintf(`{"response": {"title": %q, "content": {"descriptiveNonRepeating": {"online_media": {"media": [{"content": "https://example.org/a.jpg"}]}}}}}`, title)
		fake := &fakeCatalog{docs: map[string]string{"x2": doc}}

		recs, err := New(fake).Map(context.Background(), u, "x2")
		require.NoError(t, err)
		assert.Equal(t, "Unknown x2 a.jpg", recs[0].CommonsFilename, "title %q", title)
	}
}

func TestMapCatalogError(t *testing.T) {
	u := loadUnit(t, "https://example.org")
	fake := &fakeCatalog{err: catalog.ErrUnexpectedStatus}

	_, err := New(fake).Map(context.Background(), u, "x")
	assert.True(t, errors.Is(err, catalog.ErrUnexpectedStatus))
}

func TestResolve(t *testing.T) {
	doc, err := oj.ParseString(`{"a": [{"b": "one"}, {"b": 2}, {"b": null}, {"b": true}], "o": {"k": "v"}}`)
	require.NoError(t, err)

	registry, err := unit.Parse([]byte(`
units:
  - unit:
      name: t
      api: { api_url: "https://example.org/{}" }
      commons_template:
        type: Information
        fields:
          all: { jsonpath: "$.a[*].b" }
          none: { jsonpath: "$.missing" }
          fixed: { static: "literal" }
          object: { jsonpath: "$.o" }
          formatted: { jsonpath: "$.a[0].b", formatstring: "<%s>" }
          noverb: { jsonpath: "$.a[0].b", formatstring: "plain" }
          suffixed: { jsonpath: "$.a[*].b", append: "(x)" }
          suffixedmissing: { jsonpath: "$.missing", append: "(x)" }
`))
	require.NoError(t, err)
	u, _ := registry.Get("t")

	fields := Resolve(doc, u.Template.Fields)

	assert.Equal(t, []string{"all", "none", "fixed", "object", "formatted", "noverb", "suffixed", "suffixedmissing"}, fields.Names())
	assert.Equal(t, Value{"one", "2", "true"}, fields.Get("all"))
	assert.True(t, fields.Get("none").IsAbsent())
	assert.Equal(t, Value{"literal"}, fields.Get("fixed"))
	assert.Equal(t, Value{`{"k":"v"}`}, fields.Get("object"))
	assert.Equal(t, Value{"<one>"}, fields.Get("formatted"))
	assert.Equal(t, Value{"one"}, fields.Get("noverb"))
	assert.Equal(t, Value{"one (x)"}, fields.Get("suffixed"))
	assert.True(t, fields.Get("suffixedmissing").IsAbsent())

	// Static rules do not depend on the document at all.
	empty := Resolve(nil, u.Template.Fields)
	assert.Equal(t, Value{"literal"}, empty.Get("fixed"))
	assert.True(t, empty.Get("all").IsAbsent())
}

func TestClaims(t *testing.T) {
	u := loadUnit(t, "https://example.org")
	fake := &fakeCatalog{docs: map[string]string{"nmnhbotany_2546215": nmnhDocument}}

	claims, err := New(fake).Claims(context.Background(), u, "nmnhbotany_2546215")
	require.NoError(t, err)
	assert.Equal(t, []Claim{
		{Property: "P7851", Value: "edanmdm:nmnhbotany_2546215"},
		{Property: "P275", Value: "Q6938433", EntityType: "item"},
	}, claims)

	claims, err = New(fake).Claims(context.Background(), u, "unknown")
	require.NoError(t, err)
	assert.Nil(t, claims)

	u.Wikibase = nil
	_, err = New(fake).Claims(context.Background(), u, "nmnhbotany_2546215")
	assert.ErrorIs(t, err, ErrNoStatements)
}
