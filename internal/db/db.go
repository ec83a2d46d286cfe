package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/hitmap/internal/domain/hit"
)

// Store is the search backend facade combining all sub-interfaces.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs a raw search request body against an index and returns the
// decoded response.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*hit.Response, error)
}
