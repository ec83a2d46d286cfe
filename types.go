package hitmap

import (
	"github.com/kailas-cloud/hitmap/internal/db"
	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/domain/document"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/result"
	"github.com/kailas-cloud/hitmap/internal/result/aggregation"
	"github.com/kailas-cloud/hitmap/internal/result/suggestion"
)

// Result types.
type (
	DocumentIterator = result.DocumentIterator
	Cursor           = result.Cursor
	Key              = result.Key
	Aggregations     = aggregation.Iterator
	Aggregation      = aggregation.Value
	Suggestions      = suggestion.Iterator
	SuggestionEntry  = suggestion.Entry
	SuggestionOption = suggestion.Option
)

// Wire types.
type (
	Response   = hit.Response
	Hit        = hit.Hit
	Suggestion = hit.Suggestion
)

// Mapping types.
type (
	ClassDescriptor = mapping.ClassDescriptor
	Alias           = mapping.Alias
	Factory         = mapping.Factory
	Document        = document.Document
)

// Errors.
type (
	NotFoundError    = domain.NotFoundError
	UnknownTypeError = domain.UnknownTypeError
	ConversionError  = domain.ConversionError
)

// Sentinel errors, for use with errors.Is.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrUnknownType    = domain.ErrUnknownType
	ErrConversion     = domain.ErrConversion
	ErrInvalidMapping = domain.ErrInvalidMapping
	ErrAlreadyExists  = domain.ErrAlreadyExists
	ErrIndexNotFound  = db.ErrIndexNotFound
)

// Append makes DocumentIterator.Set pick the next integer offset.
var Append = result.Append

// Int returns an integer offset.
func Int(i int) Key { return result.Int(i) }

// Str returns a string offset.
func Str(s string) Key { return result.Str(s) }

// ParseKey returns Int for canonical decimal strings and Str otherwise.
func ParseKey(s string) Key { return result.ParseKey(s) }
