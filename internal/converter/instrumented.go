package converter

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hitmap/internal/domain/hit"
	"github.com/kailas-cloud/hitmap/internal/mapping"
	"github.com/kailas-cloud/hitmap/internal/metrics"
)

// HitConverter is the conversion contract shared by Converter and its decorators.
type HitConverter interface {
	HitToObject(h hit.Hit, desc *mapping.ClassDescriptor) (any, error)
}

// Instrumented wraps a HitConverter with metrics and debug logging.
// Errors from the inner converter are returned unchanged.
type Instrumented struct {
	inner  HitConverter
	logger *zap.Logger
}

// NewInstrumented wraps inner. logger can be nil.
func NewInstrumented(inner HitConverter, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{inner: inner, logger: logger}
}

// HitToObject delegates to the inner converter and records the outcome.
func (c *Instrumented) HitToObject(h hit.Hit, desc *mapping.ClassDescriptor) (any, error) {
	start := time.Now()

	obj, err := c.inner.HitToObject(h, desc)

	duration := time.Since(start)
	metrics.ConversionDuration.WithLabelValues(h.Type).Observe(duration.Seconds())

	if err != nil {
		metrics.ConversionsTotal.WithLabelValues(h.Type, "error").Inc()
		c.logger.Debug("Hit conversion failed",
			zap.String("type", h.Type),
			zap.String("id", h.ID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ConversionsTotal.WithLabelValues(h.Type, "ok").Inc()
	return obj, nil
}
