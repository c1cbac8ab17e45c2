// Package unit loads organization ("unit") configurations: how to query a
// catalog API, which fields to extract and how to describe the result on
// Commons.
package unit

import (
	"net/url"
	"strings"

	"github.com/lysyi3m/wiki-api-connector/app/wikitext"
)

const DefaultEditSummary = "Uploaded by Wiki API Connector"

// DefaultCrosswalk translates catalog vocabulary into Commons markup. Unit
// configs may add or override entries.
var DefaultCrosswalk = map[string]string{
	"CC0": "{{Cc-zero}}",
}

type File struct {
	Units []Entry `yaml:"units" validate:"required,min=1,dive"`
}

type Entry struct {
	Unit Unit `yaml:"unit"`
}

type Unit struct {
	Name     string    `yaml:"name" validate:"required"`
	API      API       `yaml:"api"`
	Template Template  `yaml:"commons_template"`
	Wikibase *Wikibase `yaml:"commons_wikibase"`
}

// API describes the catalog lookup endpoint. URLTemplate carries an
// identifier placeholder and optionally a key placeholder, either positional
// ("{}" for the identifier, then "{}" for the key) or named ("{id}", "{key}").
type API struct {
	URLTemplate string `yaml:"api_url" validate:"required"`
	Key         string `yaml:"api_key_string"`
}

// URL fills the placeholders of URLTemplate. Values are path-escaped before
// the first "?" and query-escaped after it.
func (a API) URL(identifier string) string {
	var b strings.Builder
	s := a.URLTemplate
	positional := []string{identifier, a.Key}
	inQuery := false

	for len(s) > 0 {
		i := strings.IndexAny(s, "{?")
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		s = s[i:]

		if s[0] == '?' {
			inQuery = true
			b.WriteByte('?')
			s = s[1:]
			continue
		}

		var value, placeholder string
		switch {
		case strings.HasPrefix(s, "{id}"):
			value, placeholder = identifier, "{id}"
		case strings.HasPrefix(s, "{key}"):
			value, placeholder = a.Key, "{key}"
		case strings.HasPrefix(s, "{}") && len(positional) > 0:
			value, placeholder = positional[0], "{}"
			positional = positional[1:]
		default:
			b.WriteByte('{')
			s = s[1:]
			continue
		}

		if inQuery {
			b.WriteString(url.QueryEscape(value))
		} else {
			b.WriteString(url.PathEscape(value))
		}
		s = s[len(placeholder):]
	}
	return b.String()
}

func (a API) hasIdentifierPlaceholder() bool {
	return strings.Contains(a.URLTemplate, "{id}") || strings.Contains(a.URLTemplate, "{}")
}

type Template struct {
	Type           string            `yaml:"type" validate:"required"`
	FilenameFormat string            `yaml:"commons_filename_format"`
	EditSummary    string            `yaml:"edit_summary"`
	Crosswalk      map[string]string `yaml:"crosswalk"`
	Append         string            `yaml:"append"`
	Categories     string            `yaml:"categories"`
	Fields         FieldList         `yaml:"fields" validate:"required"`

	// Resolved at load time
	Skeleton      wikitext.Skeleton `yaml:"-"`
	FilenameOrder []Token           `yaml:"-"`
}

// Translate maps a value through the crosswalk, returning it unchanged when
// no entry exists.
func (t Template) Translate(value string) string {
	if v, ok := t.Crosswalk[value]; ok {
		return v
	}
	return value
}

type Wikibase struct {
	Statements StatementList `yaml:"statements"`
}

// Field is one named extraction rule. Fields keep their declaration order.
type Field struct {
	Name string
	Rule Rule
}

type FieldList []Field

type Statement struct {
	Property   string
	Rule       Rule
	EntityType string // "" for plain values, "item" for Wikidata item ids
}

type StatementList []Statement
