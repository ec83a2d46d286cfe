// Package suggestion exposes the suggest block of a search response.
package suggestion

import (
	"maps"
	"reflect"
	"slices"

	"github.com/kailas-cloud/hitmap/internal/domain/hit"
)

// Entry is one suggestion of a group: the analyzed input token and its options.
type Entry struct {
	Text    string
	Offset  int
	Length  int
	Options *OptionIterator
}

// NewEntry creates an Entry.
func NewEntry(text string, offset, length int, options *OptionIterator) Entry {
	return Entry{Text: text, Offset: offset, Length: length, Options: options}
}

// Equal compares entries structurally, including the raw options.
func (e Entry) Equal(o Entry) bool {
	if e.Text != o.Text || e.Offset != o.Offset || e.Length != o.Length {
		return false
	}
	if e.Options == nil || o.Options == nil {
		return e.Options == o.Options
	}
	return reflect.DeepEqual(e.Options.raw, o.Options.raw)
}

// Iterator maps suggestion group names to their entries.
type Iterator struct {
	groups map[string][]Entry
}

// New builds the entries of every group eagerly; options stay lazy.
func New(raw map[string][]hit.Suggestion) *Iterator {
	groups := make(map[string][]Entry, len(raw))
	for name, suggestions := range raw {
		entries := make([]Entry, 0, len(suggestions))
		for _, s := range suggestions {
			entries = append(entries, NewEntry(s.Text, s.Offset, s.Length, NewOptionIterator(s.Options)))
		}
		groups[name] = entries
	}
	return &Iterator{groups: groups}
}

// Get returns the entries of a group.
func (it *Iterator) Get(name string) ([]Entry, bool) {
	entries, ok := it.groups[name]
	return entries, ok
}

// Exists reports whether a group is present.
func (it *Iterator) Exists(name string) bool {
	_, ok := it.groups[name]
	return ok
}

// Len returns the number of groups.
func (it *Iterator) Len() int { return len(it.groups) }

// Names returns the group names in sorted order.
func (it *Iterator) Names() []string {
	return slices.Sorted(maps.Keys(it.groups))
}
