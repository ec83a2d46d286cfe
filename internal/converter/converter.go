// Package converter builds typed domain objects from normalized hits.
package converter

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
)

// PropertyTag is the struct tag naming the property a field receives.
const PropertyTag = "property"

// IDSetter is implemented by domain objects that carry the hit _id.
type IDSetter interface {
	SetID(id string)
}

// ScoreSetter is implemented by domain objects that carry the hit _score.
type ScoreSetter interface {
	SetScore(score float64)
}

// Converter turns one normalized hit into one domain object.
// It is stateless and safe for concurrent use.
type Converter struct{}

// New creates a Converter.
func New() *Converter {
	return &Converter{}
}

// HitToObject builds the domain object for h using desc.
// h.Source must already be the normalized field map (see hit.Hit.Normalized).
func (c *Converter) HitToObject(h hit.Hit, desc *mapping.ClassDescriptor) (any, error) {
	if desc == nil || desc.New == nil {
		return nil, &domain.ConversionError{Type: h.Type, ID: h.ID, Err: domain.ErrInvalidMapping}
	}

	props, err := mapFields(h.Source, desc.Aliases, "")
	if err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			return nil, &domain.ConversionError{Type: h.Type, ID: h.ID, Field: fe.path, Err: fe.err}
		}
		return nil, &domain.ConversionError{Type: h.Type, ID: h.ID, Err: err}
	}

	obj := desc.New()
	if v := reflect.ValueOf(obj); v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, &domain.ConversionError{
			Type: h.Type, ID: h.ID,
			Err: fmt.Errorf("factory of class %q must return a non-nil pointer, got %T", desc.Name, obj),
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          PropertyTag,
		WeaklyTypedInput: true,
		Result:           obj,
	})
	if err != nil {
		return nil, &domain.ConversionError{Type: h.Type, ID: h.ID, Err: err}
	}
	if err := dec.Decode(props); err != nil {
		return nil, &domain.ConversionError{Type: h.Type, ID: h.ID, Err: err}
	}

	if s, ok := obj.(IDSetter); ok {
		s.SetID(h.ID)
	}
	if s, ok := obj.(ScoreSetter); ok {
		s.SetScore(h.Score)
	}

	return obj, nil
}

type fieldError struct {
	path string
	err  error
}

func (e *fieldError) Error() string { return e.path + ": " + e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }

// mapFields renames source fields to property names and coerces their values.
// Fields without an alias are dropped, unless aliases is empty.
func mapFields(src map[string]any, aliases map[string]mapping.Alias, prefix string) (map[string]any, error) {
	if len(aliases) == 0 {
		out := make(map[string]any, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out, nil
	}

	props := make(map[string]any, len(aliases))
	for field, value := range src {
		alias, ok := aliases[field]
		if !ok {
			continue
		}
		v, err := coerce(alias, value, prefix+field)
		if err != nil {
			return nil, err
		}
		props[alias.PropertyName] = v
	}
	return props, nil
}

func coerce(alias mapping.Alias, value any, path string) (any, error) {
	if value == nil {
		return nil, nil
	}
	if !alias.Multiple {
		return coerceOne(alias, value, path)
	}

	items := toSlice(value)
	out := make([]any, 0, len(items))
	for i, item := range items {
		v, err := coerceOne(alias, item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func coerceOne(alias mapping.Alias, value any, path string) (any, error) {
	if value == nil {
		return nil, nil
	}

	var (
		v   any
		err error
	)
	switch alias.Type {
	case mapping.TypeString, mapping.TypeKeyword, mapping.TypeText:
		v, err = cast.ToStringE(value)
	case mapping.TypeInteger, mapping.TypeLong, mapping.TypeShort, mapping.TypeByte:
		v, err = cast.ToInt64E(value)
	case mapping.TypeFloat, mapping.TypeDouble:
		v, err = cast.ToFloat64E(value)
	case mapping.TypeBoolean:
		v, err = cast.ToBoolE(value)
	case mapping.TypeDate:
		v, err = cast.ToTimeE(value)
	case mapping.TypeObject, mapping.TypeNested:
		m, mErr := cast.ToStringMapE(value)
		if mErr != nil {
			return nil, &fieldError{path: path, err: mErr}
		}
		return mapFields(m, alias.Aliases, path+".")
	default:
		return value, nil
	}
	if err != nil {
		return nil, &fieldError{path: path, err: err}
	}
	return v, nil
}

// toSlice wraps a scalar into a one-element slice; single-valued fields
// arrive unwrapped after normalization.
func toSlice(value any) []any {
	if items, ok := value.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}
