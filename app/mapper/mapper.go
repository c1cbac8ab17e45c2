// Package mapper turns catalog API documents into Commons upload records:
// field extraction, description rendering and filename generation.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/wiki-api-connector/app/records"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

const (
	FieldTitle = "title"
	FieldImage = "_image"
)

var ErrNoStatements = errors.New("unit has no commons_wikibase statements")

// Catalog looks up the JSON document for one identifier. A nil document with
// a nil error means the catalog has no data for it.
type Catalog interface {
	Lookup(ctx context.Context, u *unit.Unit, identifier string) (any, error)
}

// Mapper is not safe for concurrent use. Filenames are unique across all
// records produced by one Mapper.
type Mapper struct {
	catalog Catalog
	seen    map[string]bool
}

func New(catalog Catalog) *Mapper {
	return &Mapper{
		catalog: catalog,
		seen:    make(map[string]bool),
	}
}

// Map produces the upload records for identifier. It returns no records and
// no error when the catalog has no data.
func (m *Mapper) Map(ctx context.Context, u *unit.Unit, identifier string) ([]records.Record, error) {
	doc, err := m.catalog.Lookup(ctx, u, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", identifier, err)
	}
	if doc == nil {
		slog.Info("No data for identifier", "unit", u.Name, "identifier", identifier)
		return nil, nil
	}

	fields := Resolve(doc, u.Template.Fields)

	title := fields.Get(FieldTitle).First()
	if Sanitize(title) == "" {
		title = UnknownTitle
	}

	rec := records.Record{
		RecordID:    identifier,
		EditSummary: u.Template.EditSummary,
		Description: Describe(u, fields),
	}

	if image := fields.Get(FieldImage).First(); image != "" {
		rec.SourceImageURL = image
		name := BuildFilename(u.Template.FilenameOrder, title, identifier, BaseFilename(image))
		rec.CommonsFilename = uniqueName(m.seen, name)
	} else {
		slog.Debug("No image found", "unit", u.Name, "identifier", identifier)
	}

	return []records.Record{rec}, nil
}

// Describe renders the unit's template skeleton from fields, followed by the
// unit's append and categories blocks.
func Describe(u *unit.Unit, fields *Fields) string {
	params := make(map[string]string)
	for _, name := range fields.Names() {
		if v := fields.Get(name); !v.IsAbsent() {
			params[name] = u.Template.Translate(v.First())
		}
	}

	var b strings.Builder
	b.WriteString(u.Template.Skeleton.Render(params))
	if u.Template.Append != "" {
		b.WriteByte('\n')
		b.WriteString(u.Template.Append)
	}
	if u.Template.Categories != "" {
		b.WriteString("\n\n")
		b.WriteString(u.Template.Categories)
	}
	return b.String()
}

// Claim is one structured-data statement for a Commons media file.
type Claim struct {
	Property   string `json:"property"`
	Value      string `json:"value"`
	EntityType string `json:"entity_type,omitempty"`
}

// Claims evaluates the unit's wikibase statements for identifier. Statements
// whose rule yields nothing are left out.
func (m *Mapper) Claims(ctx context.Context, u *unit.Unit, identifier string) ([]Claim, error) {
	if u.Wikibase == nil || len(u.Wikibase.Statements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStatements, u.Name)
	}

	doc, err := m.catalog.Lookup(ctx, u, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", identifier, err)
	}
	if doc == nil {
		slog.Info("No data for identifier", "unit", u.Name, "identifier", identifier)
		return nil, nil
	}

	var claims []Claim
	for _, st := range u.Wikibase.Statements {
		v := evaluate(st.Rule, doc)
		if v.IsAbsent() {
			slog.Debug("Statement has no value", "identifier", identifier, "property", st.Property)
			continue
		}
		claims = append(claims, Claim{Property: st.Property, Value: v.First(), EntityType: st.EntityType})
	}
	return claims, nil
}
