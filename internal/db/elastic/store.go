// Package elastic implements db.Store on top of the Elasticsearch REST API.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"github.com/kailas-cloud/hitmap/internal/db"
	"github.com/kailas-cloud/hitmap/internal/domain/hit"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const indexNotFound = "index_not_found_exception"

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// Transport overrides the HTTP transport; nil uses the client default.
	Transport http.RoundTripper
}

// Store implements db.Store via go-elasticsearch.
type Store struct {
	client *elasticsearch.Client
}

// NewStore creates an Elasticsearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	defer drain(res)

	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: status %d", db.ErrUnavailable, res.StatusCode)}
	}
	return nil
}

// Search posts body to the _search endpoint of index and decodes the response.
// An empty body searches with the backend defaults.
func (s *Store) Search(ctx context.Context, index string, body []byte) (*hit.Response, error) {
	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
	}
	if len(body) > 0 {
		opts = append(opts, s.client.Search.WithBody(bytes.NewReader(body)))
	}

	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	defer drain(res)

	if res.IsError() {
		return nil, &db.Error{Op: db.OpSearch, Err: responseError(res)}
	}

	resp, err := hit.Decode(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return &resp, nil
}

// Close releases idle connections held by the transport.
func (s *Store) Close() {
	if t, ok := s.client.Transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search backend: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func responseError(res *esapi.Response) error {
	var eb errorBody
	_ = json.NewDecoder(res.Body).Decode(&eb)

	reason := eb.Error.Reason
	if reason == "" {
		reason = http.StatusText(res.StatusCode)
	}

	switch {
	case eb.Error.Type == indexNotFound || res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", db.ErrIndexNotFound, reason)
	case res.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", db.ErrBadRequest, reason)
	default:
		return fmt.Errorf("%w: status %d: %s", db.ErrUnavailable, res.StatusCode, reason)
	}
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
