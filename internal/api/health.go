package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/store"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status   HealthStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	Duration string       `json:"duration,omitempty"`
}

// SystemInfo contains runtime information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	GOMAXPROCS    int    `json:"gomaxprocs"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

// handleHealthCheck reports engine and database health.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthCheck{
		"engine":   s.checkEngineHealth(),
		"database": s.checkDatabaseHealth(r.Context()),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		switch {
		case c.Status == HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case c.Status == HealthStatusDegraded && overall == HealthStatusHealthy:
			overall = HealthStatusDegraded
		}
	}

	statusCode := http.StatusOK
	if overall == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	s.writeJSON(w, statusCode, HealthCheckResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.startTime).String(),
		Checks:        checks,
		System:        getSystemInfo(),
		RequestID:     middleware.GetReqID(r.Context()),
	})
}

// handleLiveness responds while the process is serving.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"uptime":         time.Since(s.startTime).String(),
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

// checkEngineHealth deals one hand from a seeded shoe.
func (s *Server) checkEngineHealth() HealthCheck {
	start := time.Now()
	shoe, err := games.NewShoe(games.ShoeConfig{Decks: s.cfg.Decks, ReshuffleThreshold: s.cfg.ReshuffleThreshold}, engine.NewSeededSource(1))
	if err == nil {
		_, err = games.ResolveHand(shoe)
	}
	if err != nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: err.Error(), Duration: time.Since(start).String()}
	}
	return HealthCheck{Status: HealthStatusHealthy, Duration: time.Since(start).String()}
}

// checkDatabaseHealth runs a one-row listing. No database is degraded, not down.
func (s *Server) checkDatabaseHealth(ctx context.Context) HealthCheck {
	if s.db == nil {
		return HealthCheck{Status: HealthStatusDegraded, Message: "persistence disabled"}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := s.db.ListRuns(ctx, store.RunsQuery{PerPage: 1}); err != nil {
		return HealthCheck{Status: HealthStatusUnhealthy, Message: err.Error(), Duration: time.Since(start).String()}
	}
	return HealthCheck{Status: HealthStatusHealthy, Duration: time.Since(start).String()}
}

func getSystemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		MemoryAlloc:   m.Alloc,
		GCCycles:      m.NumGC,
	}
}
