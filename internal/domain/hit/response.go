package hit

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Response is the raw search response.
type Response struct {
	Took         int                     `json:"took"`
	TimedOut     bool                    `json:"timed_out"`
	Hits         Hits                    `json:"hits"`
	Aggregations map[string]any          `json:"aggregations,omitempty"`
	Suggest      map[string][]Suggestion `json:"suggest,omitempty"`
}

// Hits is the hits block of a response.
type Hits struct {
	Total    Total    `json:"total"`
	MaxScore *float64 `json:"max_score,omitempty"`
	Hits     []Hit    `json:"hits"`
}

// Total is the reported number of matches. It decodes both the bare integer
// form and the {value, relation} object form.
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts either a number or an object.
func (t *Total) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Total{Value: n, Relation: "eq"}
		return nil
	}

	type plain Total
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode hits.total: %w", err)
	}
	*t = Total(p)
	return nil
}

// Suggestion is one raw entry of a suggestion group.
type Suggestion struct {
	Text    string           `json:"text"`
	Offset  int              `json:"offset"`
	Length  int              `json:"length"`
	Options []map[string]any `json:"options"`
}

// Decode reads a JSON response body.
func Decode(r io.Reader) (Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// FromMap builds a Response from an already-decoded generic mapping,
// e.g. the output of a client that returns map[string]any.
func FromMap(raw map[string]any) (Response, error) {
	var resp Response
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       totalHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &resp,
	})
	if err != nil {
		return Response{}, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

var totalType = reflect.TypeOf(Total{})

// totalHook rewrites a bare numeric total into its object form.
func totalHook(from, to reflect.Type, data any) (any, error) {
	if to != totalType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		n, err := cast.ToIntE(data)
		if err != nil {
			return nil, fmt.Errorf("hits.total: %w", err)
		}
		return map[string]any{"value": n, "relation": "eq"}, nil
	default:
		return data, nil
	}
}
