package search

import (
	"context"

	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
)

// Searcher runs a raw query body against an index.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*hit.Response, error)
}

// TypeResolver resolves class descriptors for hit types.
type TypeResolver interface {
	ClassDescriptorFor(typeName string) (*mapping.ClassDescriptor, error)
}

// Converter builds domain objects from normalized hits.
type Converter interface {
	HitToObject(h hit.Hit, desc *mapping.ClassDescriptor) (any, error)
}
