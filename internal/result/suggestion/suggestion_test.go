package suggestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
)

func fooSuggest() map[string][]hit.Suggestion {
	return map[string][]hit.Suggestion{
		"foo": {
			{
				Text:   "foobar",
				Offset: 0,
				Length: 6,
				Options: []map[string]any{
					{"text": "foobar", "freq": 77, "score": 0.8888889},
				},
			},
		},
	}
}

func TestNew_StructuralEquality(t *testing.T) {
	raw := fooSuggest()
	it := New(raw)

	entries, ok := it.Get("foo")
	require.True(t, ok)
	require.Len(t, entries, 1)

	expected := NewEntry("foobar", 0, 6, NewOptionIterator(raw["foo"][0].Options))
	assert.Equal(t, expected, entries[0])
	assert.True(t, expected.Equal(entries[0]))
}

func TestNew_Empty(t *testing.T) {
	it := New(nil)
	assert.Zero(t, it.Len())
	assert.Empty(t, it.Names())
	assert.False(t, it.Exists("foo"))

	_, ok := it.Get("foo")
	assert.False(t, ok)
}

func TestNew_Names(t *testing.T) {
	it := New(map[string][]hit.Suggestion{"b": nil, "a": {}, "c": {{Text: "x"}}})
	assert.Equal(t, []string{"a", "b", "c"}, it.Names())
	assert.Equal(t, 3, it.Len())
	assert.True(t, it.Exists("b"))
}

func TestEntry_Equal(t *testing.T) {
	opts := []map[string]any{{"text": "foobar", "score": 0.5}}
	base := NewEntry("foobar", 0, 6, NewOptionIterator(opts))

	tests := []struct {
		name  string
		other Entry
		want  bool
	}{
		{"same", NewEntry("foobar", 0, 6, NewOptionIterator([]map[string]any{{"text": "foobar", "score": 0.5}})), true},
		{"text", NewEntry("foobaz", 0, 6, NewOptionIterator(opts)), false},
		{"offset", NewEntry("foobar", 1, 6, NewOptionIterator(opts)), false},
		{"length", NewEntry("foobar", 0, 5, NewOptionIterator(opts)), false},
		{"options", NewEntry("foobar", 0, 6, NewOptionIterator(nil)), false},
		{"nil options", NewEntry("foobar", 0, 6, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
		})
	}

	assert.True(t, NewEntry("x", 0, 1, nil).Equal(NewEntry("x", 0, 1, nil)))
}

func TestEntry_EqualAfterMaterialization(t *testing.T) {
	raw := fooSuggest()
	a := New(raw)
	b := New(raw)

	ea, _ := a.Get("foo")
	eb, _ := b.Get("foo")
	_, err := ea[0].Options.Get(0)
	require.NoError(t, err)

	assert.True(t, ea[0].Equal(eb[0]), "cached options do not affect equality")
}

func TestOptionIterator_Lazy(t *testing.T) {
	it := NewOptionIterator([]map[string]any{
		{"text": "foobar", "freq": 77, "score": 0.8888889},
		{"text": "foo bar", "score": 0.5, "highlighted": "foo <em>bar</em>"},
		{"text": "Foobar Inc", "score": 1, "payload": map[string]any{"id": 7}},
		{"text": "plain", "score": "0.25"},
	})

	assert.Nil(t, it.options, "nothing is materialized before access")
	assert.Equal(t, 4, it.Len())

	first, err := it.Get(0)
	require.NoError(t, err)
	assert.Equal(t, &Option{Kind: KindTerm, Text: "foobar", Score: 0.8888889, Freq: 77}, first)

	again, err := it.Get(0)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Nil(t, it.options[1], "only accessed options are materialized")

	all, err := it.All()
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Same(t, first, all[0])
	assert.Equal(t, KindPhrase, all[1].Kind)
	assert.Equal(t, "foo <em>bar</em>", all[1].Highlighted)
	assert.Equal(t, KindCompletion, all[2].Kind)
	assert.Equal(t, map[string]any{"id": 7}, all[2].Payload)
	assert.Equal(t, KindSimple, all[3].Kind)
	assert.InDelta(t, 0.25, all[3].Score, 1e-9)
}

func TestOptionIterator_OutOfRange(t *testing.T) {
	it := NewOptionIterator([]map[string]any{{"text": "a"}})

	assert.True(t, it.Exists(0))
	assert.False(t, it.Exists(1))
	assert.False(t, it.Exists(-1))

	_, err := it.Get(1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = it.Get(-1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOptionIterator_ConversionError(t *testing.T) {
	it := NewOptionIterator([]map[string]any{
		{"text": "ok"},
		{"text": "bad", "freq": "lots"},
	})

	_, err := it.Get(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConversion)

	var ce *domain.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "freq", ce.Field)
	assert.Equal(t, "1", ce.ID)

	_, err = it.All()
	assert.ErrorIs(t, err, domain.ErrConversion)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "simple", KindSimple.String())
	assert.Equal(t, "term", KindTerm.String())
	assert.Equal(t, "phrase", KindPhrase.String())
	assert.Equal(t, "completion", KindCompletion.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
