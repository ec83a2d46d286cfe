// Package hitmap maps raw Elasticsearch search responses to domain objects.
//
// A Client resolves every hit's search type to a registered class, converts
// hits lazily on access and exposes aggregations and suggestions:
//
//	c, err := hitmap.New(
//		hitmap.WithElasticsearch("http://localhost:9200"),
//		hitmap.WithType("content", &hitmap.ClassDescriptor{...}),
//	)
//	it, err := c.Search(ctx, "content", []byte(`{"query":{"match_all":{}}}`))
//	doc, err := it.Get(hitmap.Int(0))
package hitmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/converter"
	"github.com/kailas-cloud/hitmap/internal/db"
	"github.com/kailas-cloud/hitmap/internal/db/elastic"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/logger"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/metrics"
	"github.com/kailas-cloud/hitmap/internal/result"
	searchuc "github.com/kailas-cloud/hitmap/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// ErrNoBackend is returned by Search and Ping on a client built without
// WithElasticsearch.
var ErrNoBackend = errors.New("hitmap: no search backend configured")

// Client is the hitmap SDK entry point.
type Client struct {
	store     db.Store
	registry  *mapping.Registry
	searchSvc *searchuc.Service
	logger    *zap.Logger
}

// New creates a Client. With WithElasticsearch it also waits for the backend.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
		aggPrefix:        result.DefaultAggregationPrefix,
		logger:           zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	registry := mapping.NewRegistry(cfg.logger)
	for _, t := range cfg.types {
		if err := registry.Register(t.typeName, t.desc); err != nil {
			return nil, fmt.Errorf("hitmap: register %q: %w", t.typeName, err)
		}
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := elastic.NewStore(elastic.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			Transport: cfg.transport,
		})
		if err != nil {
			return nil, fmt.Errorf("hitmap: create store: %w", err)
		}
		if !cfg.skipReadiness {
			if err := s.WaitForReady(context.Background(), cfg.readinessTimeout); err != nil {
				s.Close()
				return nil, fmt.Errorf("hitmap: search backend not ready: %w", err)
			}
		}
		store = s
	}

	var conv searchuc.Converter = converter.New()
	if cfg.instrumented {
		metrics.Register()
		conv = converter.NewInstrumented(conv, cfg.logger)
	}

	return &Client{
		store:     store,
		registry:  registry,
		searchSvc: searchuc.New(store, registry, conv, cfg.aggPrefix),
		logger:    cfg.logger,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return ErrNoBackend
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Register adds a type mapping after construction.
func (c *Client) Register(typeName string, desc *ClassDescriptor) error {
	return c.registry.Register(typeName, desc)
}

// Types returns the registered search types in sorted order.
func (c *Client) Types() []string {
	return c.registry.Types()
}

// Search sends a raw query body to index and wraps the response.
func (c *Client) Search(ctx context.Context, index string, body []byte) (*DocumentIterator, error) {
	if c.store == nil {
		return nil, ErrNoBackend
	}
	return c.searchSvc.Search(c.withLogger(ctx), index, body)
}

// Map wraps an already decoded response.
func (c *Client) Map(resp Response) *DocumentIterator {
	return c.searchSvc.Map(c.withLogger(context.Background()), resp)
}

// Decode reads a raw JSON search response from r and wraps it.
func (c *Client) Decode(r io.Reader) (*DocumentIterator, error) {
	resp, err := hit.Decode(r)
	if err != nil {
		return nil, err
	}
	return c.Map(resp), nil
}

// MapRaw wraps a response already unmarshaled into generic maps.
func (c *Client) MapRaw(raw map[string]any) (*DocumentIterator, error) {
	resp, err := hit.FromMap(raw)
	if err != nil {
		return nil, err
	}
	return c.Map(resp), nil
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, logger.FromContextOr(ctx, c.logger))
}
