// internal/server/handlers/location.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"souffle/internal/account"
	"souffle/internal/domain/geo"
	"souffle/internal/service/location"
)

// Seeder populates an empty map around a position. The ambient generator
// implements it; seeding is a no-op once any souffle exists.
type Seeder interface {
	SeedInitial(ctx context.Context, center geo.Location)
}

// LocationHandler handles position updates and balance queries
type LocationHandler struct {
	tracker  *location.Tracker
	account  account.Account
	seeder   Seeder
	validate *validator.Validate
}

// NewLocationHandler creates a new location handler. The seeder may be nil
// when ambient simulation is disabled.
func NewLocationHandler(tracker *location.Tracker, acct account.Account, seeder Seeder) *LocationHandler {
	return &LocationHandler{
		tracker:  tracker,
		account:  acct,
		seeder:   seeder,
		validate: validator.New(),
	}
}

// UpdateLocation records the user's current position
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	type updateLocationRequest struct {
		Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
		Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
		Accuracy  float64 `json:"accuracy" validate:"gte=0"`
	}

	var req updateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	loc := geo.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Timestamp: time.Now(),
	}
	h.tracker.Set(loc)

	// First position on an empty map: scatter the initial ambient batch.
	if h.seeder != nil {
		h.seeder.SeedInitial(r.Context(), loc)
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetBalances returns the ticket and premium-credit balances
func (h *LocationHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	tickets, credits, err := h.account.Balances(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to read balances")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{
		"tickets": tickets,
		"credits": credits,
	})
}
