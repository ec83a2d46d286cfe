package health

import "context"

// Pinger checks search backend availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TypeLister reports the registered search types.
type TypeLister interface {
	Types() []string
}
