package chi

import (
	"github.com/kailas-cloud/hitmap/internal/result"
	"github.com/kailas-cloud/hitmap/internal/result/aggregation"
	"github.com/kailas-cloud/hitmap/internal/result/suggestion"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeIndexNotFound    ErrorCode = "index_not_found"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeUnknownType      ErrorCode = "unknown_type"
	ErrorCodeConversionFailed ErrorCode = "conversion_failed"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Total        int                         `json:"total"`
	Count        int                         `json:"count"`
	Documents    []DocumentItem              `json:"documents"`
	Aggregations map[string]map[string]any   `json:"aggregations"`
	Suggestions  map[string][]SuggestionItem `json:"suggestions"`
}

// DocumentItem is one converted document with its offset.
type DocumentItem struct {
	Key      result.Key `json:"key"`
	Document any        `json:"document"`
}

// SuggestionItem is one suggestion entry.
type SuggestionItem struct {
	Text    string           `json:"text"`
	Offset  int              `json:"offset"`
	Length  int              `json:"length"`
	Options []map[string]any `json:"options"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// AggregationsToDTO flattens an aggregation view into name -> raw payload.
func AggregationsToDTO(it *aggregation.Iterator) map[string]map[string]any {
	out := make(map[string]map[string]any, it.Len())
	it.Each(func(name string, v *aggregation.Value) bool {
		out[name] = v.Value()
		return true
	})
	return out
}

// SuggestionsToDTO flattens a suggestion view into name -> entries.
func SuggestionsToDTO(it *suggestion.Iterator) map[string][]SuggestionItem {
	out := make(map[string][]SuggestionItem, it.Len())
	for _, name := range it.Names() {
		entries, _ := it.Get(name)
		items := make([]SuggestionItem, 0, len(entries))
		for _, e := range entries {
			item := SuggestionItem{Text: e.Text, Offset: e.Offset, Length: e.Length}
			if e.Options != nil {
				item.Options = e.Options.Raw()
			}
			if item.Options == nil {
				item.Options = []map[string]any{}
			}
			items = append(items, item)
		}
		out[name] = items
	}
	return out
}
