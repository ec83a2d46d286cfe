package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the backend is up but mapping is incomplete.
	Degraded Status = "degraded"
	// Unhealthy indicates the search backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckEmpty indicates a component with nothing configured.
	CheckEmpty CheckResult = "empty"
)

const pingTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend Pinger
	types   TypeLister
}

// New creates a Service. types can be nil.
func New(backend Pinger, types TypeLister) *Service {
	return &Service{backend: backend, types: types}
}

// Check pings the search backend and inspects the type registry.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.backend.Ping(ctx); err != nil {
		checks["search"] = CheckError
		status = Unhealthy
	} else {
		checks["search"] = CheckOK
	}

	if s.types != nil {
		if len(s.types.Types()) == 0 {
			checks["mapping"] = CheckEmpty
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["mapping"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
