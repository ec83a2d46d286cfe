// Package result turns raw search responses into lazily converted,
// randomly indexable collections of domain objects.
package result

import (
	"github.com/mohae/deepcopy"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/result/aggregation"
	"github.com/kailas-cloud/hitmap/internal/result/suggestion"
)

// DefaultAggregationPrefix is stripped from top-level aggregation names.
const DefaultAggregationPrefix = "agg_"

// TypeResolver resolves the class descriptor of a search type.
type TypeResolver interface {
	ClassDescriptorFor(typeName string) (*mapping.ClassDescriptor, error)
}

// Converter builds one domain object from a normalized hit.
type Converter interface {
	HitToObject(h hit.Hit, desc *mapping.ClassDescriptor) (any, error)
}

// entry is one addressable offset: the raw hit (nil for values assigned with
// SetDocument) and the memoized conversion result.
type entry struct {
	raw          *hit.Hit
	doc          any
	materialized bool
}

// DocumentIterator is a mutable, array-like collection of domain objects
// backed by raw hits. Hits are converted on first access and cached.
//
// A DocumentIterator is not safe for concurrent use.
type DocumentIterator struct {
	entries   *orderedmap.OrderedMap[Key, *entry]
	total     int
	resolver  TypeResolver
	converter Converter

	rawAggregations map[string]any
	rawSuggest      map[string][]hit.Suggestion
	aggregations    *aggregation.Iterator
	suggestions     *suggestion.Iterator

	aggPrefix string
	logger    *zap.Logger
}

// Option configures a DocumentIterator.
type Option func(*DocumentIterator)

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(it *DocumentIterator) {
		if l != nil {
			it.logger = l
		}
	}
}

// WithAggregationPrefix overrides the prefix stripped from aggregation names.
// An empty prefix keeps names verbatim.
func WithAggregationPrefix(prefix string) Option {
	return func(it *DocumentIterator) { it.aggPrefix = prefix }
}

// New wraps a raw response. hits.hits are stored at offsets 0..n-1; nothing
// is converted until accessed. resolver and converter are not owned.
func New(resp hit.Response, resolver TypeResolver, conv Converter, opts ...Option) *DocumentIterator {
	it := &DocumentIterator{
		entries:         orderedmap.New[Key, *entry](),
		total:           resp.Hits.Total.Value,
		resolver:        resolver,
		converter:       conv,
		rawAggregations: resp.Aggregations,
		rawSuggest:      resp.Suggest,
		aggPrefix:       DefaultAggregationPrefix,
		logger:          zap.NewNop(),
	}
	for _, o := range opts {
		o(it)
	}

	for i := range resp.Hits.Hits {
		h := resp.Hits.Hits[i]
		it.entries.Set(Int(i), &entry{raw: &h})
	}
	return it
}

// Get returns the domain object at k, converting and caching it on first access.
// It fails with a *domain.NotFoundError when nothing is stored at k.
// Resolver and converter errors are returned unchanged and nothing is cached.
func (it *DocumentIterator) Get(k Key) (any, error) {
	e, ok := it.entries.Get(k)
	if !ok {
		return nil, domain.NewNotFound(k.String())
	}
	return it.materialize(k, e)
}

func (it *DocumentIterator) materialize(k Key, e *entry) (any, error) {
	if e.materialized {
		return e.doc, nil
	}

	desc, err := it.resolver.ClassDescriptorFor(e.raw.Type)
	if err != nil {
		it.logger.Debug("Resolve hit type failed",
			zap.Stringer("offset", k),
			zap.String("type", e.raw.Type),
			zap.Error(err),
		)
		return nil, err
	}

	doc, err := it.converter.HitToObject(e.raw.Normalized(), desc)
	if err != nil {
		it.logger.Debug("Convert hit failed",
			zap.Stringer("offset", k),
			zap.String("type", e.raw.Type),
			zap.String("id", e.raw.ID),
			zap.Error(err),
		)
		return nil, err
	}

	e.doc, e.materialized = doc, true
	return doc, nil
}

// Exists reports whether anything is stored at k.
func (it *DocumentIterator) Exists(k Key) bool {
	_, ok := it.entries.Get(k)
	return ok
}

// Set stores a raw hit at k, replacing any raw hit and cached object there.
// With the Append marker the hit goes to NextKey(). The hit is deep-copied and
// converted lazily. Set returns the key it stored at.
func (it *DocumentIterator) Set(k Key, h hit.Hit) Key {
	k = it.resolveKey(k)
	cp := deepcopy.Copy(h).(hit.Hit)
	it.entries.Set(k, &entry{raw: &cp})
	return k
}

// SetDocument stores an already built domain object at k with no raw hit
// behind it. With the Append marker the object goes to NextKey().
func (it *DocumentIterator) SetDocument(k Key, doc any) Key {
	k = it.resolveKey(k)
	it.entries.Set(k, &entry{doc: doc, materialized: true})
	return k
}

func (it *DocumentIterator) resolveKey(k Key) Key {
	if !k.IsAppend() {
		return k
	}
	next := it.NextKey()
	it.logger.Debug("Appending at computed offset", zap.Stringer("offset", next))
	return next
}

// Unset removes the raw hit and any cached object at k.
func (it *DocumentIterator) Unset(k Key) {
	it.entries.Delete(k)
}

// NextKey returns the offset an append would use: one past the highest
// non-negative integer key, or 0 when there is none. It is recomputed on
// every call.
func (it *DocumentIterator) NextKey() Key {
	next := 0
	for pair := it.entries.Oldest(); pair != nil; pair = pair.Next() {
		if n, ok := pair.Key.AsInt(); ok && n >= next {
			next = n + 1
		}
	}
	return Int(next)
}

// Count returns the number of addressable offsets.
func (it *DocumentIterator) Count() int {
	return it.entries.Len()
}

// TotalCount returns the total number of matches reported by the backend.
// It is not affected by Set or Unset.
func (it *DocumentIterator) TotalCount() int {
	return it.total
}

// Keys returns the stored offsets in storage order.
func (it *DocumentIterator) Keys() []Key {
	keys := make([]Key, 0, it.entries.Len())
	for pair := it.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Cursor starts a new pass over the collection in storage order.
func (it *DocumentIterator) Cursor() *Cursor {
	return &Cursor{it: it}
}

// Each calls fn for every offset in storage order, converting as it goes.
// It stops at the first conversion error or the first error returned by fn.
func (it *DocumentIterator) Each(fn func(k Key, doc any) error) error {
	c := it.Cursor()
	for c.Next() {
		if err := fn(c.Key(), c.Document()); err != nil {
			return err
		}
	}
	return c.Err()
}

// Aggregations returns the aggregation view of the response. It is built on
// first call; later calls return the same Iterator.
func (it *DocumentIterator) Aggregations() *aggregation.Iterator {
	if it.aggregations == nil {
		it.aggregations = aggregation.New(it.rawAggregations, it.aggPrefix)
	}
	return it.aggregations
}

// Suggestions returns the suggestion view of the response. It is built on
// first call; later calls return the same Iterator.
func (it *DocumentIterator) Suggestions() *suggestion.Iterator {
	if it.suggestions == nil {
		it.suggestions = suggestion.New(it.rawSuggest)
	}
	return it.suggestions
}

// Clone returns an independent copy. Raw hits are deep-copied and their cached
// objects dropped, so the clone converts again on access. Objects stored with
// SetDocument are shared. The aggregation and suggestion views are shared.
func (it *DocumentIterator) Clone() *DocumentIterator {
	cp := *it
	cp.entries = orderedmap.New[Key, *entry]()
	for pair := it.entries.Oldest(); pair != nil; pair = pair.Next() {
		e := pair.Value
		if e.raw == nil {
			cp.entries.Set(pair.Key, &entry{doc: e.doc, materialized: true})
			continue
		}
		raw := deepcopy.Copy(*e.raw).(hit.Hit)
		cp.entries.Set(pair.Key, &entry{raw: &raw})
	}
	return &cp
}
