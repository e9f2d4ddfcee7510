// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	uptime := h.clock.Now().Sub(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":   true,
			"version": h.version,
			"uptime":  uptime,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only when every dependency check passes, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.deps.Readiness))
	ready := true

	for _, c := range h.deps.Readiness {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := c.Check(ctx)
		cancel()
		if err != nil {
			ready = false
			checks[c.Name] = err.Error()
			h.logger.Warn().Err(err).Str("check", c.Name).Msg("Readiness check failed")
			continue
		}
		checks[c.Name] = "ok"
	}

	status := http.StatusOK
	respStatus := "success"
	if !ready {
		status = http.StatusServiceUnavailable
		respStatus = "error"
	}

	resp := &models.APIResponse{
		Status: respStatus,
		Data: map[string]interface{}{
			"ready":  ready,
			"checks": checks,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	}
	if !ready {
		resp.Error = &models.APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "one or more dependencies are not ready",
		}
	}
	respondJSON(w, status, resp)
}
