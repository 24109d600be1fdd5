package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthCheck represents the readiness of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationVersionFunc reports the applied schema version and whether the
// last migration left the schema dirty.
type MigrationVersionFunc func() (version uint, dirty bool, err error)

type HealthChecker struct {
	db         Pinger
	migrations MigrationVersionFunc
	version    string
	gitCommit  string
}

func NewHealthChecker(db Pinger, migrations MigrationVersionFunc, version, gitCommit string) *HealthChecker {
	return &HealthChecker{db: db, migrations: migrations, version: version, gitCommit: gitCommit}
}

// Healthz is the liveness probe. It never touches dependencies.
func (h *HealthChecker) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// Readyz checks the database and the schema version.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "shutting_down"})
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database":   h.checkDatabase(ctx),
			"migrations": h.checkMigrations(),
		}

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			} else if check.Status == "warn" && overallStatus == "healthy" {
				overallStatus = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "database not configured"}
	}
	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CheckResult{Status: "fail", Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return CheckResult{Status: "pass", LatencyMs: time.Since(start).Milliseconds()}
}

func (h *HealthChecker) checkMigrations() CheckResult {
	if h.migrations == nil {
		return CheckResult{Status: "warn", Message: "migration status unknown"}
	}
	version, dirty, err := h.migrations()
	if err != nil {
		return CheckResult{Status: "fail", Message: fmt.Sprintf("read migration version: %v", err)}
	}
	details := map[string]any{"version": version, "dirty": dirty}
	switch {
	case dirty:
		return CheckResult{Status: "fail", Message: "schema is dirty", Details: details}
	case version == 0:
		return CheckResult{Status: "fail", Message: "no migrations applied", Details: details}
	}
	return CheckResult{Status: "pass", Details: details}
}
