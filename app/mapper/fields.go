package mapper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

// Value is the result of one field rule: absent (nil) or one or more
// strings. First is used wherever a single value is needed.
type Value []string

func (v Value) IsAbsent() bool {
	return len(v) == 0
}

func (v Value) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Fields maps field names to values, keeping declaration order.
type Fields struct {
	names  []string
	values map[string]Value
}

func (f *Fields) set(name string, v Value) {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = v
}

func (f *Fields) Get(name string) Value {
	return f.values[name]
}

func (f *Fields) Names() []string {
	return append([]string(nil), f.names...)
}

// Resolve evaluates every rule against doc in declared order. A rule that
// matches nothing yields an absent value, never an error.
func Resolve(doc any, fields unit.FieldList) *Fields {
	out := &Fields{}
	for _, field := range fields {
		out.set(field.Name, evaluate(field.Rule, doc))
	}
	return out
}

func evaluate(rule unit.Rule, doc any) Value {
	switch r := rule.(type) {
	case unit.StaticRule:
		return Value{r.Value}
	case unit.PathRule:
		return match(r, doc)
	case unit.FormattedPathRule:
		matches := match(r.PathRule, doc)
		if matches.IsAbsent() {
			return nil
		}
		return Value{formatValue(r.Format, matches.First())}
	case unit.AppendedRule:
		base := evaluate(r.Base, doc)
		if base.IsAbsent() {
			return nil
		}
		return Value{base.First() + " " + r.Suffix}
	default:
		panic(fmt.Sprintf("mapper: unhandled rule type %T", rule))
	}
}

func match(r unit.PathRule, doc any) Value {
	if doc == nil {
		return nil
	}
	var out Value
	for _, m := range r.Path.Get(doc) {
		if s, ok := stringify(m); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringify renders a JSON scalar as text. Nested objects and arrays are
// rendered as compact JSON; nulls are dropped.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool, int64, float64:
		return fmt.Sprint(t), true
	default:
		return oj.JSON(t), true
	}
}

// formatValue applies a printf-style format to a single value. Formats that
// do not consume exactly one string argument fall back to the raw value.
func formatValue(format, value string) string {
	out := fmt.Sprintf(format, value)
	if strings.Contains(out, "%!") {
		slog.Warn("Format string does not take one value, using raw value", "format", format)
		return value
	}
	return out
}
