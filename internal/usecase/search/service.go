package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/db"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/logger"
	"github.com/kailas-cloud/hitmap/internal/metrics"
	"github.com/kailas-cloud/hitmap/internal/result"
)

// Service executes raw searches and maps their responses into document iterators.
type Service struct {
	store     Searcher
	resolver  TypeResolver
	converter Converter
	aggPrefix string
}

// New creates a search service. aggPrefix is stripped from aggregation names.
func New(store Searcher, resolver TypeResolver, converter Converter, aggPrefix string) *Service {
	return &Service{store: store, resolver: resolver, converter: converter, aggPrefix: aggPrefix}
}

// Search sends body to index and wraps the response. Hits are converted lazily,
// so conversion errors surface from the returned iterator, not from Search.
func (s *Service) Search(ctx context.Context, index string, body []byte) (*result.DocumentIterator, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	resp, err := s.store.Search(ctx, index, body)

	metrics.SearchRequestDuration.WithLabelValues(index).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(index, statusLabel(err)).Inc()

	if err != nil {
		log.Debug("Search request failed", zap.String("index", index), zap.Error(err))
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	metrics.SearchHitsReturned.WithLabelValues(index).Observe(float64(len(resp.Hits.Hits)))
	log.Debug("Search request done",
		zap.String("index", index),
		zap.Int("hits", len(resp.Hits.Hits)),
		zap.Int("total", resp.Hits.Total.Value),
		zap.Int("took_ms", resp.Took),
	)

	return s.wrap(ctx, *resp), nil
}

// Map wraps an already received response.
func (s *Service) Map(ctx context.Context, resp hit.Response) *result.DocumentIterator {
	return s.wrap(ctx, resp)
}

func (s *Service) wrap(ctx context.Context, resp hit.Response) *result.DocumentIterator {
	return result.New(resp, s.resolver, s.converter,
		result.WithLogger(logger.FromContext(ctx)),
		result.WithAggregationPrefix(s.aggPrefix),
	)
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, db.ErrIndexNotFound):
		return "not_found"
	case errors.Is(err, db.ErrBadRequest):
		return "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
