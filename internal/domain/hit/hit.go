// Package hit models the raw search-engine response consumed by the result layer.
package hit

// Hit is one raw record from hits.hits.
// Exactly one of Source or Fields is normally present.
type Hit struct {
	Index     string              `json:"_index,omitempty"`
	Type      string              `json:"_type"`
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    map[string]any      `json:"_source,omitempty"`
	Fields    map[string][]any    `json:"fields,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
	Sort      []any               `json:"sort,omitempty"`
}

// Normalized returns a copy of the hit whose Source is the uniform field map
// the converter works with, and whose Fields is nil.
//
// Values of fields are unwrapped: a single-element sequence becomes its sole
// element, an empty one becomes nil, longer sequences are kept as-is.
// When both blocks are present, _source values take precedence.
func (h Hit) Normalized() Hit {
	n := h
	n.Fields = nil
	if len(h.Fields) == 0 {
		return n
	}

	src := make(map[string]any, len(h.Source)+len(h.Fields))
	for name, values := range h.Fields {
		src[name] = unwrap(values)
	}
	for name, v := range h.Source {
		src[name] = v
	}
	n.Source = src
	return n
}

func unwrap(values []any) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}
