package http

import (
	"context"
	"net/http"
	"time"

	"budget/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w, r)
}

// handleReady reports whether state is loaded and the store reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"state": "ok"}
	status, code := "ready", http.StatusOK
	if err := s.app.Ready(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["state"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	stats := s.app.Writer.Stats()
	NewResponse().Status(code).JSON(map[string]any{
		"status":     status,
		"checks":     checks,
		"onboarding": s.app.Prefs.State().String(),
		"writes": map[string]int{
			"saved":     stats.Saved,
			"written":   stats.Written,
			"coalesced": stats.Coalesced,
			"retried":   stats.Retried,
			"failed":    stats.Failed,
		},
	}).Write(w, r)
}
