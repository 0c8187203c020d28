// internal/server/handlers/moderation.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"souffle/internal/adapter/storage"
)

// StatsSource exposes the archived moderation activity.
type StatsSource interface {
	GetStats(ctx context.Context, since time.Time) (*storage.Stats, error)
}

// ModerationHandler handles moderation-stats HTTP requests
type ModerationHandler struct {
	source StatsSource
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(source StatsSource) *ModerationHandler {
	return &ModerationHandler{
		source: source,
	}
}

// GetStats returns violation and report counts over a trailing window
func (h *ModerationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		parsed, err := time.ParseDuration(windowStr)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid window")
			return
		}
		window = parsed
	}

	stats, err := h.source.GetStats(r.Context(), time.Now().Add(-window))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read moderation stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
