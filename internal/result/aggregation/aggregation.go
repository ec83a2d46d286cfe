// Package aggregation exposes the aggregations block of a search response.
package aggregation

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const bucketsKey = "buckets"

// Iterator maps aggregation names to their values.
// Names carrying the prefix are exposed without it (agg_foo -> foo).
type Iterator struct {
	prefix string
	values *orderedmap.OrderedMap[string, *Value]
}

// New builds an Iterator over the top level of an aggregations block.
// Every map-valued entry is exposed; a nil block yields an empty Iterator.
func New(raw map[string]any, prefix string) *Iterator {
	return build(raw, prefix, false)
}

// build wraps map-valued entries of raw. With prefixedOnly, entries without
// the prefix are skipped: inside an aggregation they are plain fields.
func build(raw map[string]any, prefix string, prefixedOnly bool) *Iterator {
	it := &Iterator{prefix: prefix, values: orderedmap.New[string, *Value]()}

	for _, rawName := range slices.Sorted(maps.Keys(raw)) {
		payload, ok := raw[rawName].(map[string]any)
		if !ok {
			continue
		}

		name, prefixed := trimPrefix(rawName, prefix)
		if prefixedOnly && !prefixed {
			continue
		}
		if prefixedOnly && prefix == "" && rawName == bucketsKey {
			continue
		}
		if _, taken := it.values.Get(name); taken && !prefixed {
			continue // the prefixed entry wins a name clash
		}
		it.values.Set(name, &Value{name: name, raw: payload, prefix: prefix})
	}
	return it
}

func trimPrefix(name, prefix string) (string, bool) {
	if prefix == "" {
		return name, true
	}
	if trimmed, ok := strings.CutPrefix(name, prefix); ok && trimmed != "" {
		return trimmed, true
	}
	return name, false
}

// Get returns the aggregation with the given (unprefixed) name.
func (it *Iterator) Get(name string) (*Value, bool) {
	return it.values.Get(name)
}

// Exists reports whether an aggregation with the given name is present.
func (it *Iterator) Exists(name string) bool {
	_, ok := it.values.Get(name)
	return ok
}

// Len returns the number of aggregations.
func (it *Iterator) Len() int { return it.values.Len() }

// Names returns the aggregation names in iteration order.
func (it *Iterator) Names() []string {
	names := make([]string, 0, it.values.Len())
	for pair := it.values.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Each calls fn for every aggregation until fn returns false.
func (it *Iterator) Each(fn func(name string, v *Value) bool) {
	for pair := it.values.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Find resolves a dotted path through sub-aggregations, e.g. "categories.brands".
func (it *Iterator) Find(path string) (*Value, bool) {
	parts := strings.Split(path, ".")
	cur := it
	var v *Value
	for _, part := range parts {
		next, ok := cur.Get(part)
		if !ok {
			return nil, false
		}
		v = next
		cur = next.Aggregations()
	}
	return v, v != nil
}

// Value is a single aggregation result.
type Value struct {
	name   string
	raw    map[string]any
	prefix string
	subs   *Iterator
}

// Name returns the unprefixed aggregation name.
func (v *Value) Name() string { return v.name }

// Value returns the raw aggregation payload unmodified.
func (v *Value) Value() map[string]any { return v.raw }

// Field returns a single entry of the raw payload, e.g. "doc_count".
func (v *Value) Field(key string) (any, bool) {
	f, ok := v.raw[key]
	return f, ok
}

// Aggregations returns the sub-aggregations nested in this payload.
func (v *Value) Aggregations() *Iterator {
	if v.subs == nil {
		v.subs = build(v.raw, v.prefix, true)
	}
	return v.subs
}

// Buckets returns the buckets of a bucket aggregation, named by their key.
// Both the array form and the keyed (object) form are supported.
func (v *Value) Buckets() []*Value {
	switch raw := v.raw[bucketsKey].(type) {
	case []any:
		out := make([]*Value, 0, len(raw))
		for _, b := range raw {
			bucket, ok := b.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, &Value{name: bucketName(bucket), raw: bucket, prefix: v.prefix})
		}
		return out
	case map[string]any:
		out := make([]*Value, 0, len(raw))
		for _, key := range slices.Sorted(maps.Keys(raw)) {
			bucket, ok := raw[key].(map[string]any)
			if !ok {
				continue
			}
			out = append(out, &Value{name: key, raw: bucket, prefix: v.prefix})
		}
		return out
	default:
		return nil
	}
}

func bucketName(bucket map[string]any) string {
	if s, ok := bucket["key_as_string"].(string); ok {
		return s
	}
	return cast.ToString(bucket["key"])
}
