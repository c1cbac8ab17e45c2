// Package wikitext holds the Commons file-description template skeletons and
// renders them from a parameter map.
package wikitext

import (
	"sort"
	"strings"
)

// Skeleton is a Commons template with named, initially blank parameters.
type Skeleton struct {
	Name   string
	Header string
	Params []string
}

var skeletons = map[string]Skeleton{
	"Information": {
		Name: "Information",
		Params: []string{
			"description",
			"date",
			"source",
			"author",
			"permission",
			"other versions",
		},
	},
	"Artwork": {
		Name:   "Artwork",
		Header: "=={{int:filedesc}}==",
		Params: []string{
			"artist",
			"author",
			"title",
			"description",
			"object type",
			"date",
			"medium",
			"institution",
			"department",
			"accession number",
			"place of creation",
			"place of discovery",
			"object history",
			"exhibition history",
			"credit line",
			"inscriptions",
			"notes",
			"references",
			"source",
			"permission",
			"other_versions",
			"wikidata",
			"other_fields",
		},
	},
}

// Lookup returns the skeleton registered under name.
func Lookup(name string) (Skeleton, bool) {
	s, ok := skeletons[name]
	return s, ok
}

// Names lists the registered skeleton names in sorted order.
func Names() []string {
	names := make([]string, 0, len(skeletons))
	for name := range skeletons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasParam reports whether the skeleton declares the named parameter.
func (s Skeleton) HasParam(name string) bool {
	for _, p := range s.Params {
		if p == name {
			return true
		}
	}
	return false
}

// Render fills each parameter line with its value from values. Parameters
// missing from values are rendered blank; keys that are not parameters of the
// skeleton are ignored.
func (s Skeleton) Render(values map[string]string) string {
	width := 0
	for _, p := range s.Params {
		width = max(width, len(p))
	}

	var b strings.Builder
	if s.Header != "" {
		b.WriteString(s.Header)
		b.WriteByte('\n')
	}
	b.WriteString("{{")
	b.WriteString(s.Name)
	b.WriteByte('\n')

	for _, p := range s.Params {
		b.WriteString(" |")
		b.WriteString(p)
		b.WriteString(strings.Repeat(" ", width-len(p)+1))
		b.WriteByte('=')
		if v := values[p]; v != "" {
			b.WriteByte(' ')
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}

	b.WriteString("}}")
	return b.String()
}
