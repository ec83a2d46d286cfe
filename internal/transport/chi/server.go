package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/db"
	"github.com/kailas-cloud/hitmap/internal/domain"
	"github.com/kailas-cloud/hitmap/internal/logger"
	"github.com/kailas-cloud/hitmap/internal/result"
	healthuc "github.com/kailas-cloud/hitmap/internal/usecase/health"
)

const defaultMaxBodyBytes = 1 << 20

// SearchService runs a raw search and wraps the response.
type SearchService interface {
	Search(ctx context.Context, index string, body []byte) (*result.DocumentIterator, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the hitmap HTTP API.
type Server struct {
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxBodyBytes <= 0 uses 1 MiB.
func NewServer(search SearchService, health HealthService, logger *zap.Logger, maxBodyBytes int64) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		search:       search,
		health:       health,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(db.ErrIndexNotFound, http.StatusNotFound, ErrorCodeIndexNotFound),
		sentinelHandler(db.ErrBadRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrUnknownType, http.StatusUnprocessableEntity, ErrorCodeUnknownType),
		sentinelHandler(domain.ErrConversion, http.StatusUnprocessableEntity, ErrorCodeConversionFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/indexes/{index}/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/indexes/{index}/search.
// The request body is passed to the backend verbatim.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: malformed JSON")
		return
	}

	it, err := s.search.Search(r.Context(), index, body)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	docs := make([]DocumentItem, 0, it.Count())
	err = it.Each(func(k result.Key, doc any) error {
		docs = append(docs, DocumentItem{Key: k, Document: doc})
		return nil
	})
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Total:        it.TotalCount(),
		Count:        len(docs),
		Documents:    docs,
		Aggregations: AggregationsToDTO(it.Aggregations()),
		Suggestions:  SuggestionsToDTO(it.Suggestions()),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Mapping errors carry the
// type, id and field of the failing hit; backend errors only the sentinel.
func safeDomainMessage(err error) string {
	var ce *domain.ConversionError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	var ute *domain.UnknownTypeError
	if errors.As(err, &ute) {
		return ute.Error()
	}
	for _, s := range []error{db.ErrIndexNotFound, db.ErrBadRequest, domain.ErrNotFound} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
