// Package health provides liveness and readiness probe endpoints.
//
// All registered checks run from a single poller goroutine at a fixed
// interval; handlers only read the cached results. A check flips to
// unhealthy on its first failure and back on its first success.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes a single component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	probe   CheckFunc
}

// Health caches the results of periodic liveness and readiness checks.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
	results   map[string]error
	cancel    context.CancelFunc
}

// New returns a Health with no checks, in the not-ready state.
func New() *Health {
	return &Health{results: make(map[string]error)}
}

// AddLivenessCheck registers a process-health probe such as a goroutine
// count watchdog. Register all checks before calling Start.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, probe CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, check{name: name, timeout: timeout, probe: probe})
}

// AddReadinessCheck registers a dependency probe such as a database ping.
// Register all checks before calling Start.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, probe CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, check{name: name, timeout: timeout, probe: probe})
}

// Start runs every check once, then again at each interval tick, until
// Stop is called or ctx is cancelled.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		h.runAll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.runAll(ctx)
			}
		}
	}()
}

// Stop cancels the poller goroutine. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Set it to true once startup
// completes and to false at the beginning of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the gate is open and every readiness check
// passed on its last run.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.readiness {
		if h.results[c.name] != nil {
			return false
		}
	}
	return true
}

func (h *Health) runAll(ctx context.Context) {
	h.mu.RLock()
	checks := make([]check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.liveness...)
	checks = append(checks, h.readiness...)
	h.mu.RUnlock()

	for _, c := range checks {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.probe(probeCtx)
		cancel()

		h.mu.Lock()
		h.results[c.name] = err
		h.mu.Unlock()
	}
}

// runOnce executes a single named check immediately and caches its result.
// Used by tests; the poller covers normal operation.
func (h *Health) runOnce(ctx context.Context, name string) {
	h.mu.RLock()
	var target *check
	for i := range h.liveness {
		if h.liveness[i].name == name {
			target = &h.liveness[i]
		}
	}
	for i := range h.readiness {
		if h.readiness[i].name == name {
			target = &h.readiness[i]
		}
	}
	h.mu.RUnlock()
	if target == nil {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, target.timeout)
	err := target.probe(probeCtx)
	cancel()

	h.mu.Lock()
	h.results[name] = err
	h.mu.Unlock()
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness checks pass, 503
// with per-check failure messages otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	failures := h.failuresLocked(h.liveness)
	h.mu.RUnlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz: 200 while the manual gate is open and
// all readiness checks pass, 503 otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	failures := h.failuresLocked(h.readiness)
	h.mu.RUnlock()

	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

// failuresLocked collects the cached failures for checks. Callers hold mu.
func (h *Health) failuresLocked(checks []check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		if err := h.results[c.name]; err != nil {
			failures[c.name] = err.Error()
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
