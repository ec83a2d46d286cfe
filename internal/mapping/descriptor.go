// Package mapping resolves search types to class descriptors.
package mapping

import (
	"fmt"

	"github.com/kailas-cloud/hitmap/internal/domain"
)

// Alias field types understood by the converter.
const (
	TypeString  = "string"
	TypeKeyword = "keyword"
	TypeText    = "text"
	TypeInteger = "integer"
	TypeLong    = "long"
	TypeShort   = "short"
	TypeByte    = "byte"
	TypeFloat   = "float"
	TypeDouble  = "double"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeObject  = "object"
	TypeNested  = "nested"
)

var knownTypes = map[string]bool{
	"":          true, // passthrough
	TypeString:  true,
	TypeKeyword: true,
	TypeText:    true,
	TypeInteger: true,
	TypeLong:    true,
	TypeShort:   true,
	TypeByte:    true,
	TypeFloat:   true,
	TypeDouble:  true,
	TypeBoolean: true,
	TypeDate:    true,
	TypeObject:  true,
	TypeNested:  true,
}

// Alias describes how one source field maps onto a class property.
type Alias struct {
	PropertyName string
	Type         string
	Multiple     bool
	Aliases      map[string]Alias // object and nested types only
}

// IsObject reports whether the alias holds an embedded object.
func (a Alias) IsObject() bool {
	return a.Type == TypeObject || a.Type == TypeNested
}

// Factory creates an empty domain object. It must return a pointer.
type Factory func() any

// ClassDescriptor is the resolved class of a search type.
// An empty Aliases set maps every source field under its own name.
type ClassDescriptor struct {
	Name    string
	Aliases map[string]Alias
	New     Factory
}

// PropertyMapping returns the top-level {fieldName -> propertyName} mapping.
func (d *ClassDescriptor) PropertyMapping() map[string]string {
	m := make(map[string]string, len(d.Aliases))
	for field, a := range d.Aliases {
		m[field] = a.PropertyName
	}
	return m
}

// Validate checks the descriptor for completeness.
func (d *ClassDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: class name is required", domain.ErrInvalidMapping)
	}
	if d.New == nil {
		return fmt.Errorf("%w: class %q has no factory", domain.ErrInvalidMapping, d.Name)
	}
	return validateAliases(d.Name, d.Aliases)
}

func validateAliases(path string, aliases map[string]Alias) error {
	for field, a := range aliases {
		if a.PropertyName == "" {
			return fmt.Errorf("%w: %s.%s has no property name", domain.ErrInvalidMapping, path, field)
		}
		if !knownTypes[a.Type] {
			return fmt.Errorf("%w: %s.%s has unknown type %q", domain.ErrInvalidMapping, path, field, a.Type)
		}
		if len(a.Aliases) > 0 && !a.IsObject() {
			return fmt.Errorf(
				"%w: %s.%s declares child aliases but is of type %q",
				domain.ErrInvalidMapping, path, field, a.Type,
			)
		}
		if err := validateAliases(path+"."+field, a.Aliases); err != nil {
			return err
		}
	}
	return nil
}
