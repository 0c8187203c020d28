// internal/server/handlers/souffle.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"souffle/internal/account"
	"souffle/internal/domain/geo"
	"souffle/internal/domain/souffle"
	"souffle/internal/logger"
	"souffle/internal/moderation"
	"souffle/internal/service/location"
)

// ViolationRecorder archives flagged and blocked moderation decisions.
type ViolationRecorder interface {
	RecordViolation(ctx context.Context, result moderation.Result, content string) error
}

// SouffleHandler handles souffle-related HTTP requests
type SouffleHandler struct {
	manager    souffle.Manager
	engine     *moderation.Engine
	tracker    *location.Tracker
	account    account.Account
	violations ViolationRecorder
	validate   *validator.Validate
	log        logger.Logger
}

// NewSouffleHandler creates a new souffle handler
func NewSouffleHandler(
	manager souffle.Manager,
	engine *moderation.Engine,
	tracker *location.Tracker,
	acct account.Account,
	violations ViolationRecorder,
	log logger.Logger,
) *SouffleHandler {
	return &SouffleHandler{
		manager:    manager,
		engine:     engine,
		tracker:    tracker,
		account:    acct,
		violations: violations,
		validate:   validator.New(),
		log:        log,
	}
}

// ListSouffles returns the active souffles. The optional simulated query
// parameter filters on the synthetic flag; simulated=false hides the
// ambient filler.
func (h *SouffleHandler) ListSouffles(w http.ResponseWriter, r *http.Request) {
	active := h.manager.Active()

	if v := r.URL.Query().Get("simulated"); v != "" {
		want, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid simulated filter")
			return
		}

		filtered := make([]souffle.Souffle, 0, len(active))
		for _, s := range active {
			if s.IsSimulated == want {
				filtered = append(filtered, s)
			}
		}
		active = filtered
	}

	respondWithJSON(w, http.StatusOK, active)
}

// GetSouffle returns one active souffle by id
func (h *SouffleHandler) GetSouffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, ok := h.manager.Get(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Souffle not found")
		return
	}

	respondWithJSON(w, http.StatusOK, s)
}

// CreateSouffle moderates and creates a new souffle
func (h *SouffleHandler) CreateSouffle(w http.ResponseWriter, r *http.Request) {
	type createSouffleRequest struct {
		Feeling      string   `json:"feeling"`
		Message      string   `json:"message" validate:"required"`
		Wish         string   `json:"wish"`
		Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
		Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
		DurationHrs  int      `json:"duration_hours" validate:"required,oneof=24 48"`
		StickerID    string   `json:"sticker_id"`
		BackgroundID string   `json:"background_id"`
	}

	var req createSouffleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	// Location from the request body, falling back to the tracked position.
	var loc *geo.Location
	if req.Latitude != nil && req.Longitude != nil {
		loc = &geo.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	} else {
		loc = h.tracker.Current()
	}

	content := souffle.Content{
		Feeling: req.Feeling,
		Message: req.Message,
		Wish:    req.Wish,
	}

	result := h.engine.Check(content)
	switch result.Status {
	case moderation.StatusBlocked:
		h.recordViolation(r.Context(), result, content)
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "Content rejected by moderation",
			"reasons": result.Reasons,
		})
		return
	case moderation.StatusFlagged:
		h.recordViolation(r.Context(), result, content)
		content = result.Content
	}

	s, err := h.manager.Create(r.Context(), souffle.CreateParams{
		Content:      content,
		Location:     loc,
		Duration:     souffle.Duration(req.DurationHrs),
		StickerID:    req.StickerID,
		BackgroundID: req.BackgroundID,
	})
	if err != nil {
		switch err {
		case souffle.ErrNoLocation:
			respondWithError(w, http.StatusBadRequest, "No location available")
		case souffle.ErrInvalidDuration:
			respondWithError(w, http.StatusBadRequest, "Duration must be 24 or 48 hours")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create souffle")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, s)
}

// RevealSouffle reveals a souffle, either by physical proximity or by
// spending a ticket for a remote reveal.
func (h *SouffleHandler) RevealSouffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	type revealRequest struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Remote    bool     `json:"remote"`
	}

	var req revealRequest
	if r.Body != nil {
		// An empty body means "use the tracked position".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	// Revealing an unknown or expired id is a benign no-op: nothing to
	// reveal, nothing to charge for.
	s, ok := h.manager.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if req.Remote {
		ok, err := h.account.SpendTicket(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to spend ticket")
			return
		}
		if !ok {
			respondWithError(w, http.StatusPaymentRequired, "No tickets available")
			return
		}
	} else {
		var from *geo.Location
		if req.Latitude != nil && req.Longitude != nil {
			from = &geo.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		} else {
			from = h.tracker.Current()
		}
		if from == nil {
			respondWithError(w, http.StatusBadRequest, "No location available")
			return
		}
		if !geo.IsWithinRevealDistance(from.Latitude, from.Longitude, s.Location.Latitude, s.Location.Longitude) {
			respondWithError(w, http.StatusForbidden, "Too far away to reveal")
			return
		}
	}

	if err := h.manager.Reveal(r.Context(), id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to reveal souffle")
		return
	}

	revealed, _ := h.manager.Get(id)
	respondWithJSON(w, http.StatusOK, revealed)
}

// ReportSouffle removes a souffle through the community-report path
func (h *SouffleHandler) ReportSouffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.manager.Report(r.Context(), id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to report souffle")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reported"})
}

// ClearSimulated removes all synthetic souffles
func (h *SouffleHandler) ClearSimulated(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ClearSimulated(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to clear simulated souffles")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// GetRevealed returns the revealed-souffle-id history
func (h *SouffleHandler) GetRevealed(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.manager.RevealedIDs())
}

func (h *SouffleHandler) recordViolation(ctx context.Context, result moderation.Result, content souffle.Content) {
	if h.violations == nil {
		return
	}
	if err := h.violations.RecordViolation(ctx, result, content.Combined()); err != nil {
		h.log.Error("error recording moderation violation", logger.Error(err))
	}
}
