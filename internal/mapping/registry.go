package mapping

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/config"
	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/domain/document"
)

// Registry maps search type names to class descriptors.
// It is built once at startup and read-only afterwards.
type Registry struct {
	types  map[string]*ClassDescriptor
	logger *zap.Logger
}

// NewRegistry creates an empty registry. logger can be nil.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{types: make(map[string]*ClassDescriptor), logger: logger}
}

// Register binds a search type to a class descriptor.
func (r *Registry) Register(typeName string, desc *ClassDescriptor) error {
	if typeName == "" {
		return fmt.Errorf("%w: type name is required", domain.ErrInvalidMapping)
	}
	if desc == nil {
		return fmt.Errorf("%w: type %q has no descriptor", domain.ErrInvalidMapping, typeName)
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("register %q: %w", typeName, err)
	}
	if _, ok := r.types[typeName]; ok {
		return fmt.Errorf("register %q: %w", typeName, domain.ErrAlreadyExists)
	}

	r.types[typeName] = desc
	r.logger.Debug("Registered search type",
		zap.String("type", typeName),
		zap.String("class", desc.Name),
		zap.Int("aliases", len(desc.Aliases)),
	)
	return nil
}

// ClassDescriptorFor resolves the class of a search type.
func (r *Registry) ClassDescriptorFor(typeName string) (*ClassDescriptor, error) {
	desc, ok := r.types[typeName]
	if !ok {
		return nil, domain.NewUnknownType(typeName)
	}
	return desc, nil
}

// PropertyMappingFor returns the {fieldName -> propertyName} mapping of a class.
func (r *Registry) PropertyMappingFor(desc *ClassDescriptor) map[string]string {
	if desc == nil {
		return map[string]string{}
	}
	return desc.PropertyMapping()
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.types))
}

// FromConfig builds a registry from the mapping section of the config.
// Classes without an entry in factories are backed by document.Document.
func FromConfig(cfg config.MappingConfig, factories map[string]Factory, logger *zap.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, typeName := range slices.Sorted(maps.Keys(cfg.Types)) {
		tc := cfg.Types[typeName]

		factory, ok := factories[tc.Class]
		if !ok {
			factory = genericFactory(tc.Class)
		}

		desc := &ClassDescriptor{
			Name:    tc.Class,
			Aliases: aliasesFromConfig(tc.Aliases),
			New:     factory,
		}
		if err := r.Register(typeName, desc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func genericFactory(class string) Factory {
	return func() any { return document.New(class) }
}

func aliasesFromConfig(in map[string]config.AliasConfig) map[string]Alias {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]Alias, len(in))
	for field, a := range in {
		out[field] = Alias{
			PropertyName: a.Property,
			Type:         a.Type,
			Multiple:     a.Multiple,
			Aliases:      aliasesFromConfig(a.Aliases),
		}
	}
	return out
}
