// Package health holds the liveness and readiness checks.
package health

import (
	"context"
	"time"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the dependencies of the health service.
type Deps struct {
	Store   Pinger
	Version string
	// Timeout bounds each readiness check. Default 2s.
	Timeout time.Duration
}

// Status is the body of /readyz.
type Status struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthService runs the readiness checks.
type HealthService interface {
	Check(ctx context.Context) (Status, bool)
}

// Services groups the health services.
type Services struct {
	Health HealthService
}

// NewServices builds the health services.
func NewServices(d Deps) Services {
	return Services{Health: NewHealthService(d)}
}

type healthService struct {
	deps Deps
}

// NewHealthService builds a HealthService.
func NewHealthService(d Deps) HealthService {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &healthService{deps: d}
}

func (s *healthService) Check(ctx context.Context) (Status, bool) {
	st := Status{Status: "ok", Version: s.deps.Version, Checks: map[string]string{}}
	if s.deps.Store == nil {
		return st, true
	}
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		st.Status = "degraded"
		st.Checks["store"] = err.Error()
		return st, false
	}
	st.Checks["store"] = "ok"
	return st, true
}
