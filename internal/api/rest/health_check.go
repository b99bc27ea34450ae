package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HealthChecker checks the health of a dependency
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// HealthStatus represents the health status
type HealthStatus string

const (
	HealthStatusPass HealthStatus = "pass"
	HealthStatusFail HealthStatus = "fail"
)

// HealthCheckResult is one dependency's outcome.
type HealthCheckResult struct {
	Status       HealthStatus `json:"status"`
	Error        string       `json:"error,omitempty"`
	ResponseTime string       `json:"response_time,omitempty"`
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status  HealthStatus                 `json:"status"`
	Version string                       `json:"version,omitempty"`
	Uptime  string                       `json:"uptime,omitempty"`
	Checks  map[string]HealthCheckResult `json:"checks"`
}

// HealthService runs readiness checks against registered dependencies.
type HealthService struct {
	mu        sync.RWMutex
	checkers  map[string]HealthChecker
	timeout   time.Duration
	version   string
	tracer    trace.Tracer
	startTime time.Time
}

// NewHealthService creates a health service; timeout bounds each check.
func NewHealthService(version string, timeout time.Duration) *HealthService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthService{
		checkers:  make(map[string]HealthChecker),
		timeout:   timeout,
		version:   version,
		tracer:    otel.Tracer("api.rest.health"),
		startTime: time.Now(),
	}
}

// RegisterChecker registers a health checker
func (h *HealthService) RegisterChecker(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Check runs every checker concurrently.
func (h *HealthService) Check(ctx context.Context) HealthResponse {
	ctx, span := h.tracer.Start(ctx, "health.readiness")
	defer span.End()

	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]HealthCheckResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		h.mu.RLock()
		checker := h.checkers[name]
		h.mu.RUnlock()

		wg.Add(1)
		go func(i int, checker HealthChecker) {
			defer wg.Done()
			results[i] = h.runCheck(ctx, checker)
		}(i, checker)
	}
	wg.Wait()

	resp := HealthResponse{
		Status:  HealthStatusPass,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		Checks:  make(map[string]HealthCheckResult, len(names)),
	}
	for i, name := range names {
		resp.Checks[name] = results[i]
		if results[i].Status == HealthStatusFail {
			resp.Status = HealthStatusFail
		}
	}

	span.SetAttributes(attribute.String("health.status", string(resp.Status)))
	return resp
}

func (h *HealthService) runCheck(ctx context.Context, checker HealthChecker) HealthCheckResult {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := checker.Check(ctx)
	result := HealthCheckResult{
		Status:       HealthStatusPass,
		ResponseTime: time.Since(start).String(),
	}
	if err != nil {
		result.Status = HealthStatusFail
		result.Error = err.Error()
	}
	return result
}

// LivenessHandler reports that the process is serving.
func (h *HealthService) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{
			Status:  HealthStatusPass,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
			Checks:  map[string]HealthCheckResult{},
		})
	}
}

// ReadinessHandler returns 503 when any dependency check fails.
func (h *HealthService) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		status := http.StatusOK
		if resp.Status == HealthStatusFail {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, resp)
	}
}

func writeHealth(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
