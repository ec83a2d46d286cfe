package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/converter"
	"github.com/kailas-cloud/hitmap/internal/db"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/result"
	healthuc "github.com/kailas-cloud/hitmap/internal/usecase/health"
)

// --- Mocks ---

type mockSearch struct {
	resp      hit.Response
	err       error
	lastIndex string
	lastBody  string
}

func (m *mockSearch) Search(_ context.Context, index string, body []byte) (*result.DocumentIterator, error) {
	m.lastIndex = index
	m.lastBody = string(body)
	if m.err != nil {
		return nil, m.err
	}
	return result.New(m.resp, testRegistry(), converter.New()), nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type article struct {
	Header string `property:"header" json:"header"`
	Views  int    `property:"views" json:"views"`
}

func testRegistry() *mapping.Registry {
	reg := mapping.NewRegistry(zap.NewNop())
	_ = reg.Register("content", &mapping.ClassDescriptor{
		Name: "Content",
		Aliases: map[string]mapping.Alias{
			"header": {PropertyName: "header", Type: mapping.TypeString},
			"views":  {PropertyName: "views", Type: mapping.TypeInteger},
		},
		New: func() any { return &article{} },
	})
	return reg
}

func okResponse() hit.Response {
	return hit.Response{
		Hits: hit.Hits{
			Total: hit.Total{Value: 42, Relation: "eq"},
			Hits: []hit.Hit{
				{Type: "content", ID: "1", Source: map[string]any{"header": "Test header", "views": float64(3)}},
				{Type: "content", ID: "2", Fields: map[string][]any{"header": {"Test header2"}}},
			},
		},
		Aggregations: map[string]any{"agg_foo": map[string]any{"doc_count": float64(1)}},
		Suggest: map[string][]hit.Suggestion{
			"foo": {{Text: "foobar", Length: 6, Options: []map[string]any{{"text": "foobar", "freq": float64(77)}}}},
		},
	}
}

func newRouter(search SearchService, health HealthService) http.Handler {
	s := NewServer(search, health, zap.NewNop(), 64)
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return errResp
}

// --- Tests ---

func TestSearch_OK(t *testing.T) {
	search := &mockSearch{resp: okResponse()}
	rr := do(t, newRouter(search, nil), "POST", "/v1/indexes/content/search", `{"size":2}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if search.lastIndex != "content" || search.lastBody != `{"size":2}` {
		t.Errorf("unexpected request: %q %q", search.lastIndex, search.lastBody)
	}

	var resp struct {
		Total     int `json:"total"`
		Count     int `json:"count"`
		Documents []struct {
			Key      string  `json:"key"`
			Document article `json:"document"`
		} `json:"documents"`
		Aggregations map[string]map[string]any   `json:"aggregations"`
		Suggestions  map[string][]SuggestionItem `json:"suggestions"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Total != 42 || resp.Count != 2 {
		t.Errorf("total/count = %d/%d", resp.Total, resp.Count)
	}
	if resp.Documents[0].Key != "0" || resp.Documents[0].Document.Header != "Test header" || resp.Documents[0].Document.Views != 3 {
		t.Errorf("unexpected first document: %+v", resp.Documents[0])
	}
	if resp.Documents[1].Key != "1" || resp.Documents[1].Document.Header != "Test header2" {
		t.Errorf("unexpected second document: %+v", resp.Documents[1])
	}
	if resp.Aggregations["foo"]["doc_count"] != float64(1) {
		t.Errorf("unexpected aggregations: %v", resp.Aggregations)
	}
	if got := resp.Suggestions["foo"]; len(got) != 1 || got[0].Text != "foobar" || got[0].Length != 6 || len(got[0].Options) != 1 {
		t.Errorf("unexpected suggestions: %+v", got)
	}
}

func TestSearch_EmptyBody(t *testing.T) {
	search := &mockSearch{resp: hit.Response{}}
	rr := do(t, newRouter(search, nil), "POST", "/v1/indexes/content/search", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var resp map[string]any
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if docs, ok := resp["documents"].([]any); !ok || len(docs) != 0 {
		t.Errorf("expected empty documents array, got %v", resp["documents"])
	}
}

func TestSearch_BadBody(t *testing.T) {
	search := &mockSearch{}
	h := newRouter(search, nil)

	rr := do(t, h, "POST", "/v1/indexes/content/search", `{"query":`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed: got %d, want 400", rr.Code)
	}
	if decodeError(t, rr).Code != ErrorCodeBadRequest {
		t.Error("expected bad_request code")
	}

	rr = do(t, h, "POST", "/v1/indexes/content/search", `{"query":"`+strings.Repeat("x", 100)+`"}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("too large: got %d, want 413", rr.Code)
	}
	if search.lastIndex != "" {
		t.Error("backend must not be called for rejected bodies")
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		resp   hit.Response
		status int
		code   ErrorCode
	}{
		{"index not found", &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}, hit.Response{}, http.StatusNotFound, ErrorCodeIndexNotFound},
		{"backend bad request", &db.Error{Op: db.OpSearch, Err: db.ErrBadRequest}, hit.Response{}, http.StatusBadRequest, ErrorCodeBadRequest},
		{"backend down", &db.Error{Op: db.OpSearch, Err: db.ErrUnavailable}, hit.Response{}, http.StatusInternalServerError, ErrorCodeInternalError},
		{"other", errors.New("boom"), hit.Response{}, http.StatusInternalServerError, ErrorCodeInternalError},
		{
			"unknown type", nil,
			hit.Response{Hits: hit.Hits{Hits: []hit.Hit{{Type: "missing", ID: "1"}}}},
			http.StatusUnprocessableEntity, ErrorCodeUnknownType,
		},
		{
			"conversion", nil,
			hit.Response{Hits: hit.Hits{Hits: []hit.Hit{{Type: "content", ID: "1", Source: map[string]any{"views": "many"}}}}},
			http.StatusUnprocessableEntity, ErrorCodeConversionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearch{err: tt.err, resp: tt.resp}
			rr := do(t, newRouter(search, nil), "POST", "/v1/indexes/content/search", "{}")

			if rr.Code != tt.status {
				t.Fatalf("got %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			errResp := decodeError(t, rr)
			if errResp.Code != tt.code {
				t.Errorf("code: got %s, want %s", errResp.Code, tt.code)
			}
			if tt.code == ErrorCodeInternalError && errResp.Message != "internal error" {
				t.Errorf("internal details leaked: %q", errResp.Message)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		report healthuc.Report
		status int
	}{
		{"healthy", healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"search": healthuc.CheckOK}}, http.StatusOK},
		{"degraded", healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"mapping": healthuc.CheckEmpty}}, http.StatusOK},
		{"unhealthy", healthuc.Report{Status: healthuc.Unhealthy, Checks: map[string]healthuc.CheckResult{"search": healthuc.CheckError}}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, newRouter(&mockSearch{}, &mockHealth{report: tt.report}), "GET", "/health", "")
			if rr.Code != tt.status {
				t.Fatalf("got %d, want %d", rr.Code, tt.status)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != string(tt.report.Status) {
				t.Errorf("status: got %q, want %q", resp.Status, tt.report.Status)
			}
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	rr := do(t, newRouter(&mockSearch{}, nil), "GET", "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("got %d, want 200", rr.Code)
	}
}
