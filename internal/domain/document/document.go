// Package document provides the map-backed domain object used for search
// types that have no compiled class registered.
package document

// Document is a generic domain object: the resolved class name, the hit
// metadata and every mapped property.
type Document struct {
	Class      string         `property:"-" json:"_class"`
	ID         string         `property:"-" json:"_id"`
	Score      float64        `property:"-" json:"_score"`
	Properties map[string]any `property:",remain" json:"properties"`
}

// New creates an empty Document of the given class.
func New(class string) *Document {
	return &Document{Class: class, Properties: map[string]any{}}
}

// SetID sets the hit identifier.
func (d *Document) SetID(id string) { d.ID = id }

// SetScore sets the hit score.
func (d *Document) SetScore(score float64) { d.Score = score }

// Get returns a property value.
func (d *Document) Get(property string) (any, bool) {
	v, ok := d.Properties[property]
	return v, ok
}

// String returns a string property, or "" when absent or not a string.
func (d *Document) String(property string) string {
	s, _ := d.Properties[property].(string)
	return s
}
