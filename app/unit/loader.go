package unit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/wiki-api-connector/app/wikitext"
)

var (
	ErrUnitNotFound         = errors.New("unit not found")
	ErrInvalidConfig        = errors.New("invalid unit config")
	ErrInvalidRule          = errors.New("invalid rule")
	ErrInvalidFilenameOrder = errors.New("invalid filename order")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Registry holds the units of one config file, keyed by name. It is not
// modified after Load returns.
type Registry struct {
	units map[string]*Unit
	names []string
}

func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	registry, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Debug("Unit configuration loaded", "path", path, "units", len(registry.names))
	return registry, nil
}

func Parse(data []byte) (*Registry, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	registry := &Registry{units: make(map[string]*Unit)}
	for i := range file.Units {
		u := &file.Units[i].Unit
		if _, exists := registry.units[u.Name]; exists {
			return nil, fmt.Errorf("%w: unit %q defined more than once", ErrInvalidConfig, u.Name)
		}
		if err := resolve(u); err != nil {
			return nil, fmt.Errorf("unit %q: %w", u.Name, err)
		}
		registry.units[u.Name] = u
		registry.names = append(registry.names, u.Name)
	}

	return registry, nil
}

// resolve fills the load-time fields of a unit and checks what struct tags
// cannot express.
func resolve(u *Unit) error {
	if !u.API.hasIdentifierPlaceholder() {
		return fmt.Errorf("%w: api_url has no identifier placeholder", ErrInvalidConfig)
	}

	skeleton, ok := wikitext.Lookup(u.Template.Type)
	if !ok {
		return fmt.Errorf("%w: unknown template type %q (known: %s)",
			ErrInvalidConfig, u.Template.Type, strings.Join(wikitext.Names(), ", "))
	}
	u.Template.Skeleton = skeleton

	for _, f := range u.Template.Fields {
		if !skeleton.HasParam(f.Name) {
			slog.Debug("Field is not a template parameter", "unit", u.Name, "template", u.Template.Type, "field", f.Name)
		}
	}

	order, err := ParseFilenameOrder(u.Template.FilenameFormat)
	if err != nil {
		return err
	}
	u.Template.FilenameOrder = order

	if u.Template.EditSummary == "" {
		u.Template.EditSummary = DefaultEditSummary
	}

	crosswalk := maps.Clone(DefaultCrosswalk)
	maps.Copy(crosswalk, u.Template.Crosswalk)
	u.Template.Crosswalk = crosswalk

	return nil
}

func (r *Registry) Get(name string) (*Unit, error) {
	u, ok := r.units[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnitNotFound, name)
	}
	return u, nil
}

// Names returns unit names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
