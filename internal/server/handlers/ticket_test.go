// internal/server/handlers/ticket_test.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souffle/internal/account"
	"souffle/internal/domain/geo"
	"souffle/internal/domain/ticket"
	"souffle/internal/logger"
	"souffle/internal/service/location"
	ticketService "souffle/internal/service/ticket"
)

type ticketMemoryStore struct {
	tickets []ticket.SuspendedTicket
}

func (s *ticketMemoryStore) LoadTickets(context.Context) ([]ticket.SuspendedTicket, error) {
	return s.tickets, nil
}

func (s *ticketMemoryStore) SaveTickets(_ context.Context, t []ticket.SuspendedTicket) error {
	s.tickets = append([]ticket.SuspendedTicket(nil), t...)
	return nil
}

func newTicketRouter(t *testing.T) (*chi.Mux, *account.MemoryAccount, *location.Tracker) {
	t.Helper()

	acct := account.NewMemoryAccount(0, 0)
	manager := ticketService.NewManager(&ticketMemoryStore{}, acct, nil, logger.NewNop(), ticketService.ManagerConfig{})
	t.Cleanup(func() { manager.Stop(context.Background()) })

	tracker := location.NewTracker()
	handler := NewTicketHandler(manager, tracker)

	router := chi.NewRouter()
	router.Route("/tickets", func(r chi.Router) {
		r.Get("/", handler.ListTickets)
		r.Post("/", handler.PlaceTicket)
		r.Post("/{id}/claim", handler.ClaimTicket)
	})

	return router, acct, tracker
}

func TestPlaceAndClaimTicket(t *testing.T) {
	router, acct, _ := newTicketRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/tickets", map[string]any{
		"latitude":  48.8566,
		"longitude": 2.3522,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed ticket.SuspendedTicket
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&placed))
	require.NotEmpty(t, placed.ID)

	rec = doJSON(t, router, http.MethodPost, "/tickets/"+placed.ID+"/claim", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, credits, err := acct.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, credits)

	// The ticket is gone; claiming it again conflicts and credits nothing.
	rec = doJSON(t, router, http.MethodPost, "/tickets/"+placed.ID+"/claim", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, credits, err = acct.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, credits)
}

func TestPlaceTicketNeedsLocation(t *testing.T) {
	router, _, tracker := newTicketRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/tickets", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// A tracked position is enough.
	tracker.Set(geo.Location{Latitude: 48.8566, Longitude: 2.3522})
	rec = doJSON(t, router, http.MethodPost, "/tickets", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestClaimUnknownTicket(t *testing.T) {
	router, _, _ := newTicketRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/tickets/nope/claim", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
