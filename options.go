package hitmap

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/mapping"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type typeRegistration struct {
	typeName string
	desc     *mapping.ClassDescriptor
}

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	transport http.RoundTripper

	readinessTimeout time.Duration
	skipReadiness    bool

	types        []typeRegistration
	aggPrefix    string
	logger       *zap.Logger
	instrumented bool
}

// WithElasticsearch configures the search backend addresses.
// Without it the client can only map responses it is given (Map, Decode).
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append(c.addrs, addrs...)
	})
}

// WithBasicAuth sets the backend credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithTransport overrides the HTTP transport used to reach the backend.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithReadinessTimeout sets how long New waits for the backend. Default: 10s.
// Zero or negative skips the readiness check.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
		c.skipReadiness = d <= 0
	})
}

// WithType registers the class a search type is converted to.
func WithType(typeName string, desc *ClassDescriptor) Option {
	return optionFunc(func(c *clientConfig) {
		c.types = append(c.types, typeRegistration{typeName: typeName, desc: desc})
	})
}

// WithAggregationPrefix sets the prefix stripped from aggregation names.
// Default: "agg_". An empty prefix keeps names verbatim.
func WithAggregationPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.aggPrefix = prefix
	})
}

// WithLogger enables debug logging of searches and conversions.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics records conversion metrics on the hitmap Prometheus collectors.
// The collectors are registered on the default registry.
func WithMetrics() Option {
	return optionFunc(func(c *clientConfig) {
		c.instrumented = true
	})
}
