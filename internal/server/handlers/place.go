// internal/server/handlers/place.go

package handlers

import (
	"net/http"

	"souffle/internal/domain/place"
)

// PlaceSource exposes the derived echo-place set.
type PlaceSource interface {
	Places() []place.EchoPlace
}

// PlaceHandler handles echo-place HTTP requests
type PlaceHandler struct {
	source PlaceSource
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(source PlaceSource) *PlaceHandler {
	return &PlaceHandler{
		source: source,
	}
}

// ListPlaces returns the current echo places
func (h *PlaceHandler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.source.Places())
}
