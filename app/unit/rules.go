package unit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ohler55/ojg/jp"
	"gopkg.in/yaml.v3"
)

// Rule is how a field value is obtained from a catalog document. The
// implementations are StaticRule, PathRule, FormattedPathRule and
// AppendedRule.
type Rule interface {
	isRule()
}

// StaticRule yields Value regardless of the document.
type StaticRule struct {
	Value string
}

// PathRule yields every JSONPath match in evaluation order.
type PathRule struct {
	Source string
	Path   jp.Expr
}

// FormattedPathRule applies a printf-style Format to the first match.
type FormattedPathRule struct {
	PathRule
	Format string
}

// AppendedRule joins Suffix to the first value produced by Base with a space.
type AppendedRule struct {
	Base   Rule
	Suffix string
}

func (StaticRule) isRule()        {}
func (PathRule) isRule()          {}
func (FormattedPathRule) isRule() {}
func (AppendedRule) isRule()      {}

const (
	keyJSONPath     = "jsonpath"
	keyStatic       = "static"
	keyFormatString = "formatstring"
	keyAppend       = "append"
	keyEntityType   = "entity_type"
)

var (
	fieldKeys     = []string{keyJSONPath, keyStatic, keyFormatString, keyAppend}
	statementKeys = []string{keyJSONPath, keyStatic, keyEntityType}
)

func (l *FieldList) UnmarshalYAML(node *yaml.Node) error {
	var fields FieldList
	err := eachRule(node, fieldKeys, func(name string, raw map[string]string) error {
		rule, err := buildRule(raw)
		if err != nil {
			return err
		}
		fields = append(fields, Field{Name: name, Rule: rule})
		return nil
	})
	if err != nil {
		return err
	}
	*l = fields
	return nil
}

func (l *StatementList) UnmarshalYAML(node *yaml.Node) error {
	var statements StatementList
	err := eachRule(node, statementKeys, func(property string, raw map[string]string) error {
		entityType, hasEntityType := raw[keyEntityType]
		if hasEntityType && entityType != "item" {
			return fmt.Errorf("%w: unsupported entity_type %q", ErrInvalidRule, entityType)
		}
		delete(raw, keyEntityType)

		rule, err := buildRule(raw)
		if err != nil {
			return err
		}
		statements = append(statements, Statement{Property: property, Rule: rule, EntityType: entityType})
		return nil
	})
	if err != nil {
		return err
	}
	*l = statements
	return nil
}

// eachRule walks a mapping of name -> rule mapping in document order,
// rejecting duplicate names and keys outside allowed.
func eachRule(node *yaml.Node, allowed []string, fn func(name string, raw map[string]string) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping of rules", ErrInvalidRule, node.Line)
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		name := keyNode.Value

		if seen[name] {
			return fmt.Errorf("%w: line %d: %q defined more than once", ErrInvalidRule, keyNode.Line, name)
		}
		seen[name] = true

		if valueNode.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: line %d: rule %q must be a mapping", ErrInvalidRule, valueNode.Line, name)
		}

		raw := make(map[string]string)
		for j := 0; j+1 < len(valueNode.Content); j += 2 {
			k, v := valueNode.Content[j], valueNode.Content[j+1]
			if !slices.Contains(allowed, k.Value) {
				return fmt.Errorf("%w: line %d: rule %q: unknown key %q (allowed: %s)",
					ErrInvalidRule, k.Line, name, k.Value, strings.Join(allowed, ", "))
			}
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: rule %q: %s must be a scalar", ErrInvalidRule, v.Line, name, k.Value)
			}
			raw[k.Value] = v.Value
		}

		if err := fn(name, raw); err != nil {
			return fmt.Errorf("line %d: rule %q: %w", keyNode.Line, name, err)
		}
	}
	return nil
}

func buildRule(raw map[string]string) (Rule, error) {
	source, hasPath := raw[keyJSONPath]
	value, hasStatic := raw[keyStatic]
	format, hasFormat := raw[keyFormatString]
	suffix, hasAppend := raw[keyAppend]

	var rule Rule
	switch {
	case hasPath && hasStatic:
		return nil, fmt.Errorf("%w: jsonpath and static are mutually exclusive", ErrInvalidRule)
	case hasStatic:
		if hasFormat {
			return nil, fmt.Errorf("%w: formatstring requires jsonpath", ErrInvalidRule)
		}
		rule = StaticRule{Value: value}
	case hasPath:
		expr, err := jp.ParseString(source)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid jsonpath %q: %v", ErrInvalidRule, source, err)
		}
		path := PathRule{Source: source, Path: expr}
		if hasFormat {
			rule = FormattedPathRule{PathRule: path, Format: format}
		} else {
			rule = path
		}
	default:
		return nil, fmt.Errorf("%w: one of jsonpath or static is required", ErrInvalidRule)
	}

	if hasAppend {
		rule = AppendedRule{Base: rule, Suffix: suffix}
	}
	return rule, nil
}
