// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically in background goroutines. A check must
// fail a few times in a row before it is reported unhealthy, so a single
// slow database ping does not flip readiness.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// failureThreshold is how many consecutive failures mark a check unhealthy.
const failureThreshold = 3

// CheckFunc probes one component. It returns nil when healthy.
type CheckFunc func(ctx context.Context) error

// check holds one registered probe and its runtime state.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	fails   int
	healthy bool
	lastErr error
}

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.fn(checkCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err != nil {
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy = false
		}
		return
	}
	c.fails = 0
	c.healthy = true
}

func (c *check) status() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy, c.lastErr
}

// Service manages liveness and readiness checks for one process.
type Service struct {
	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	ready     bool
	cancel    context.CancelFunc
}

// New creates a health Service. The process starts not ready; call
// SetReady(true) once initialization completes.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check answering "is this process alive".
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &check{name: name, timeout: timeout, fn: fn, healthy: true})
}

// AddReadinessCheck registers a check answering "can this process serve
// traffic", such as a database ping.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &check{name: name, timeout: timeout, fn: fn, healthy: true})
}

// Start runs every registered check in its own goroutine at the given
// interval until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := append(append([]*check{}, s.liveness...), s.readiness...)
	s.mu.Unlock()

	for _, c := range checks {
		go func(c *check) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			c.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}(c)
	}
}

// Stop cancels all background check goroutines.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Typically set true after
// startup and false at the beginning of graceful shutdown.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// LiveEndpoint serves /livez: 200 while all liveness checks pass, 503 with
// failure details otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	checks := append([]*check{}, s.liveness...)
	s.mu.Unlock()

	writeStatus(w, failures(checks))
}

// ReadyEndpoint serves /readyz: 200 only when the service is marked ready
// and all readiness checks pass.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ready := s.ready
	checks := append([]*check{}, s.readiness...)
	s.mu.Unlock()

	failed := failures(checks)
	if !ready {
		failed["_readiness"] = "service is not ready"
	}
	writeStatus(w, failed)
}

func failures(checks []*check) map[string]string {
	failed := make(map[string]string)
	for _, c := range checks {
		if healthy, err := c.status(); !healthy {
			if err != nil {
				failed[c.name] = err.Error()
			} else {
				failed[c.name] = "check is unhealthy"
			}
		}
	}
	return failed
}

func writeStatus(w http.ResponseWriter, failed map[string]string) {
	resp := struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}{Status: "ok"}

	status := http.StatusOK
	if len(failed) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failed
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
