package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HealthCheck is the /health response body.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Database is what the health checks need from the store.
type Database interface {
	Ping(ctx context.Context) error
	MigrationState(ctx context.Context) (version int64, dirty bool, err error)
}

// poolReporter is implemented by stores that can describe their pool.
type poolReporter interface {
	PoolStats() map[string]any
}

const checkTimeout = 2 * time.Second

type HealthChecker struct {
	db        Database
	version   string
	gitCommit string
	now       func() time.Time
}

func NewHealthChecker(db Database, version, gitCommit string) *HealthChecker {
	return &HealthChecker{db: db, version: version, gitCommit: gitCommit, now: time.Now}
}

// Health reports every check; any failure makes the response 503.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database":   h.checkDatabase(ctx),
			"migrations": h.checkMigrations(ctx),
		}

		overall := "healthy"
		status := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overall = "unhealthy"
				status = http.StatusServiceUnavailable
				break
			}
		}

		writeJSON(w, status, HealthCheck{
			Status:    overall,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	}
}

// Readyz answers 200 once the database responds.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		if h.db == nil || h.db.Ping(ctx) != nil {
			respondHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		respondHealth(w, http.StatusOK, "ready")
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{
			Status:  "fail",
			Message: "Database not initialized",
			Details: map[string]any{"remediation": "Check that DATABASE_URL is set correctly and PostgreSQL is running"},
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(dbCtx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		message, remediation := describeDBError(err)
		return CheckResult{
			Status:    "fail",
			Message:   message,
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error(), "remediation": remediation},
		}
	}

	result := CheckResult{Status: "pass", Message: "PostgreSQL connection successful", LatencyMs: latency}
	if pr, ok := h.db.(poolReporter); ok {
		result.Details = pr.PoolStats()
	}
	return result
}

func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database not initialized"}
	}

	migCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	version, dirty, err := h.db.MigrationState(migCtx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		remediation := "Verify migrations have been applied and schema_migrations exists"
		if strings.Contains(err.Error(), "does not exist") {
			remediation = "Run database migrations first: server migrate up"
		}
		return CheckResult{
			Status:    "fail",
			Message:   "Failed to query migration version",
			LatencyMs: latency,
			Details:   map[string]any{"error": err.Error(), "remediation": remediation},
		}
	}

	if dirty {
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state - manual intervention required",
			LatencyMs: latency,
			Details: map[string]any{
				"version": version,
				"dirty":   true,
				"action":  "Do NOT run new migrations until this is resolved",
			},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied successfully (version %d)", version),
		LatencyMs: latency,
		Details:   map[string]any{"version": version, "dirty": false},
	}
}

func describeDBError(err error) (string, string) {
	text := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Database ping timed out", "Check PostgreSQL performance or network latency"
	case strings.Contains(text, "connection refused"):
		return "Database connection refused", "Verify PostgreSQL is running and DATABASE_URL host/port are correct"
	case strings.Contains(text, "no such host"):
		return "Cannot reach database host", "Check DATABASE_URL hostname and network connectivity"
	case strings.Contains(text, "authentication failed"):
		return "Database authentication failed", "Verify DATABASE_URL username and password are correct"
	default:
		return "Database ping failed", "Check DATABASE_URL and PostgreSQL service status"
	}
}

// Healthz is the liveness probe; it never touches the database.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
