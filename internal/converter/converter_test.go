package converter

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/domain/document"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/metrics"
)

type author struct {
	Name string `property:"name"`
}

type article struct {
	id        string
	score     float64
	Title     string    `property:"title"`
	Views     int64     `property:"views"`
	Rating    float64   `property:"rating"`
	Published bool      `property:"published"`
	Created   time.Time `property:"created"`
	Tags      []string  `property:"tags"`
	Author    author    `property:"author"`
	Comments  []author  `property:"comments"`
}

func (a *article) SetID(id string)        { a.id = id }
func (a *article) SetScore(score float64) { a.score = score }

func articleDescriptor() *mapping.ClassDescriptor {
	return &mapping.ClassDescriptor{
		Name: "Article",
		Aliases: map[string]mapping.Alias{
			"header":    {PropertyName: "title", Type: mapping.TypeString},
			"views":     {PropertyName: "views", Type: mapping.TypeLong},
			"rating":    {PropertyName: "rating", Type: mapping.TypeFloat},
			"published": {PropertyName: "published", Type: mapping.TypeBoolean},
			"created":   {PropertyName: "created", Type: mapping.TypeDate},
			"tags":      {PropertyName: "tags", Type: mapping.TypeKeyword, Multiple: true},
			"author": {
				PropertyName: "author",
				Type:         mapping.TypeObject,
				Aliases: map[string]mapping.Alias{
					"full_name": {PropertyName: "name", Type: mapping.TypeString},
				},
			},
			"comments": {
				PropertyName: "comments",
				Type:         mapping.TypeNested,
				Multiple:     true,
				Aliases: map[string]mapping.Alias{
					"by": {PropertyName: "name", Type: mapping.TypeString},
				},
			},
		},
		New: func() any { return &article{} },
	}
}

func TestHitToObject_TypedClass(t *testing.T) {
	h := hit.Hit{
		Type:  "article",
		ID:    "a1",
		Score: 2.5,
		Source: map[string]any{
			"header":    "Test header",
			"views":     float64(42), // JSON numbers decode as float64
			"rating":    "4.5",
			"published": "true",
			"created":   "2024-03-01T10:00:00Z",
			"tags":      []any{"go", "search"},
			"author":    map[string]any{"full_name": "Ada", "ignored": true},
			"comments":  []any{map[string]any{"by": "Bob"}, map[string]any{"by": "Eve"}},
			"unmapped":  "dropped",
		},
	}

	obj, err := New().HitToObject(h, articleDescriptor())
	require.NoError(t, err)

	a, ok := obj.(*article)
	require.True(t, ok)
	assert.Equal(t, "a1", a.id)
	assert.InDelta(t, 2.5, a.score, 1e-9)
	assert.Equal(t, "Test header", a.Title)
	assert.Equal(t, int64(42), a.Views)
	assert.InDelta(t, 4.5, a.Rating, 1e-9)
	assert.True(t, a.Published)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), a.Created.UTC())
	assert.Equal(t, []string{"go", "search"}, a.Tags)
	assert.Equal(t, "Ada", a.Author.Name)
	assert.Equal(t, []author{{Name: "Bob"}, {Name: "Eve"}}, a.Comments)
}

func TestHitToObject_MultipleWrapsScalar(t *testing.T) {
	h := hit.Hit{Type: "article", ID: "a2", Source: map[string]any{"tags": "solo"}}

	obj, err := New().HitToObject(h, articleDescriptor())
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, obj.(*article).Tags)
}

func TestHitToObject_NilValue(t *testing.T) {
	h := hit.Hit{Type: "article", ID: "a3", Source: map[string]any{"header": nil}}

	obj, err := New().HitToObject(h, articleDescriptor())
	require.NoError(t, err)
	assert.Empty(t, obj.(*article).Title)
}

func TestHitToObject_SourceAndFieldsEquivalent(t *testing.T) {
	fromSource := hit.Hit{Type: "article", ID: "a", Source: map[string]any{"header": "Test header"}}
	fromFields := hit.Hit{Type: "article", ID: "a", Fields: map[string][]any{"header": {"Test header"}}}

	c := New()
	a, err := c.HitToObject(fromSource.Normalized(), articleDescriptor())
	require.NoError(t, err)
	b, err := c.HitToObject(fromFields.Normalized(), articleDescriptor())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHitToObject_GenericDocument(t *testing.T) {
	desc := &mapping.ClassDescriptor{
		Name: "Content",
		New:  func() any { return document.New("Content") },
	}
	h := hit.Hit{
		Type: "content", ID: "foo", Score: 1,
		Source: map[string]any{"header": "Test header", "id": "shadow", "class": "shadow"},
	}

	obj, err := New().HitToObject(h, desc)
	require.NoError(t, err)

	doc, ok := obj.(*document.Document)
	require.True(t, ok)
	assert.Equal(t, "Content", doc.Class)
	assert.Equal(t, "foo", doc.ID)
	assert.InDelta(t, 1.0, doc.Score, 1e-9)
	assert.Equal(t, "Test header", doc.String("header"))
	assert.Equal(t, "shadow", doc.String("id"), "source fields never overwrite hit metadata")
	assert.Equal(t, "shadow", doc.String("class"))
}

func TestHitToObject_Errors(t *testing.T) {
	tests := []struct {
		name      string
		source    map[string]any
		desc      *mapping.ClassDescriptor
		wantField string
	}{
		{
			name:      "bad integer",
			source:    map[string]any{"views": "many"},
			desc:      articleDescriptor(),
			wantField: "views",
		},
		{
			name:      "bad boolean",
			source:    map[string]any{"published": "perhaps"},
			desc:      articleDescriptor(),
			wantField: "published",
		},
		{
			name:      "object is scalar",
			source:    map[string]any{"author": "Ada"},
			desc:      articleDescriptor(),
			wantField: "author",
		},
		{
			name:      "nested element",
			source:    map[string]any{"comments": []any{map[string]any{"by": []any{"a", "b"}}}},
			desc:      articleDescriptor(),
			wantField: "comments[0].by",
		},
		{
			name:   "nil descriptor",
			source: map[string]any{},
			desc:   nil,
		},
		{
			name:   "non-pointer factory",
			source: map[string]any{},
			desc:   &mapping.ClassDescriptor{Name: "Value", New: func() any { return article{} }},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hit.Hit{Type: "article", ID: "x", Source: tt.source}

			obj, err := New().HitToObject(h, tt.desc)
			require.Error(t, err)
			assert.Nil(t, obj)
			assert.ErrorIs(t, err, domain.ErrConversion)

			var ce *domain.ConversionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "article", ce.Type)
			assert.Equal(t, "x", ce.ID)
			assert.Equal(t, tt.wantField, ce.Field)
		})
	}
}

type stubConverter struct {
	obj any
	err error
}

func (s *stubConverter) HitToObject(hit.Hit, *mapping.ClassDescriptor) (any, error) {
	return s.obj, s.err
}

func TestInstrumented_PassesThrough(t *testing.T) {
	want := &article{Title: "x"}
	c := NewInstrumented(&stubConverter{obj: want}, nil)

	before := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("instrumented_ok", "ok"))
	got, err := c.HitToObject(hit.Hit{Type: "instrumented_ok"}, articleDescriptor())
	require.NoError(t, err)
	assert.Same(t, want, got)

	after := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("instrumented_ok", "ok"))
	assert.InDelta(t, 1.0, after-before, 1e-9)
}

func TestInstrumented_ErrorUnchanged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cause := errors.New("boom")
	c := NewInstrumented(&stubConverter{err: cause}, zap.New(core))

	before := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("instrumented_err", "error"))
	_, err := c.HitToObject(hit.Hit{Type: "instrumented_err", ID: "1"}, articleDescriptor())
	assert.Same(t, cause, err)

	after := testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("instrumented_err", "error"))
	assert.InDelta(t, 1.0, after-before, 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("Hit conversion failed").Len())
}
