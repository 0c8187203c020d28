// internal/server/handlers/ticket.go

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"souffle/internal/domain/geo"
	"souffle/internal/service/location"
	ticketService "souffle/internal/service/ticket"
)

// TicketHandler handles suspended-ticket HTTP requests
type TicketHandler struct {
	manager *ticketService.Manager
	tracker *location.Tracker
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(manager *ticketService.Manager, tracker *location.Tracker) *TicketHandler {
	return &TicketHandler{
		manager: manager,
		tracker: tracker,
	}
}

// ListTickets returns the active suspended tickets
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.manager.Active())
}

// PlaceTicket pins a new ticket at the given or tracked location
func (h *TicketHandler) PlaceTicket(w http.ResponseWriter, r *http.Request) {
	type placeTicketRequest struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	var req placeTicketRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var loc *geo.Location
	if req.Latitude != nil && req.Longitude != nil {
		loc = &geo.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	} else {
		loc = h.tracker.Current()
	}
	if loc == nil {
		respondWithError(w, http.StatusBadRequest, "No location available")
		return
	}

	t, err := h.manager.Place(r.Context(), *loc)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to place ticket")
		return
	}

	respondWithJSON(w, http.StatusCreated, t)
}

// ClaimTicket consumes a ticket and credits the claimer
func (h *TicketHandler) ClaimTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claimed, err := h.manager.Claim(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to claim ticket")
		return
	}
	if !claimed {
		respondWithError(w, http.StatusConflict, "Ticket not found or already claimed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "claimed"})
}
