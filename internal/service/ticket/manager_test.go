package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souffle/internal/account"
	"souffle/internal/domain/geo"
	"souffle/internal/domain/ticket"
	"souffle/internal/logger"
)

type fakeStore struct {
	tickets []ticket.SuspendedTicket
	saves   int
}

func (f *fakeStore) LoadTickets(context.Context) ([]ticket.SuspendedTicket, error) {
	return f.tickets, nil
}

func (f *fakeStore) SaveTickets(_ context.Context, t []ticket.SuspendedTicket) error {
	f.tickets = append([]ticket.SuspendedTicket(nil), t...)
	f.saves++
	return nil
}

func newTestManager(store *fakeStore, acct account.Account) *Manager {
	return NewManager(store, acct, nil, logger.NewNop(), ManagerConfig{EventsTopic: "ticket"})
}

func TestPlace(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, account.NewMemoryAccount(0, 0))

	tk, err := m.Place(context.Background(), geo.Location{Latitude: 48.8566, Longitude: 2.3522})
	require.NoError(t, err)

	assert.NotEmpty(t, tk.ID)
	assert.False(t, tk.IsClaimed)
	assert.Equal(t, ticket.Lifetime, tk.ExpiresAt.Sub(tk.CreatedAt))

	assert.Len(t, m.Active(), 1)
	assert.Equal(t, 1, store.saves)
}

func TestClaimCreditsOnceAndConsumes(t *testing.T) {
	acct := account.NewMemoryAccount(0, 0)
	m := newTestManager(&fakeStore{}, acct)

	tk, err := m.Place(context.Background(), geo.Location{Latitude: 48.8566, Longitude: 2.3522})
	require.NoError(t, err)

	ok, err := m.Claim(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m.Active(), "a claimed ticket does not linger in the collection")

	_, credits, err := acct.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, credits)

	// Second claim of the same id fails and credits nothing.
	ok, err = m.Claim(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, credits, err = acct.Balances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, credits)
}

func TestClaimUnknownID(t *testing.T) {
	acct := account.NewMemoryAccount(0, 0)
	m := newTestManager(&fakeStore{}, acct)

	ok, err := m.Claim(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimExpiredTicket(t *testing.T) {
	store := &fakeStore{
		tickets: []ticket.SuspendedTicket{{
			ID:        "old",
			Location:  geo.Location{Latitude: 48.8566, Longitude: 2.3522},
			CreatedAt: time.Now().Add(-72 * time.Hour),
			ExpiresAt: time.Now().Add(-24 * time.Hour),
		}},
	}
	acct := account.NewMemoryAccount(0, 0)
	m := newTestManager(store, acct)
	require.NoError(t, m.Load(context.Background()))

	ok, err := m.Claim(context.Background(), "old")
	require.NoError(t, err)
	assert.False(t, ok)

	_, credits, _ := acct.Balances(context.Background())
	assert.Zero(t, credits)
}

func TestLoadSweepsExpired(t *testing.T) {
	store := &fakeStore{
		tickets: []ticket.SuspendedTicket{
			{ID: "old", ExpiresAt: time.Now().Add(-time.Hour)},
			{ID: "fresh", ExpiresAt: time.Now().Add(time.Hour)},
		},
	}
	m := newTestManager(store, account.NewMemoryAccount(0, 0))
	require.NoError(t, m.Load(context.Background()))

	active := m.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].ID)
}

func TestMemoryAccountSpend(t *testing.T) {
	acct := account.NewMemoryAccount(1, 0)

	ok, err := acct.SpendTicket(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	// Balance is empty now; further spends fail without going negative.
	ok, err = acct.SpendTicket(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	tickets, _, err := acct.Balances(context.Background())
	require.NoError(t, err)
	assert.Zero(t, tickets)
}
