// internal/account/memory.go

package account

import (
	"context"
	"sync"
)

// MemoryAccount is an in-process account, used in tests and when no Redis
// is configured.
type MemoryAccount struct {
	mu      sync.Mutex
	tickets int
	credits int
}

// NewMemoryAccount creates an in-memory account with the given starting
// balances.
func NewMemoryAccount(tickets, credits int) *MemoryAccount {
	return &MemoryAccount{tickets: tickets, credits: credits}
}

// SpendTicket debits one ticket if the balance allows it.
func (a *MemoryAccount) SpendTicket(context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tickets <= 0 {
		return false, nil
	}
	a.tickets--
	return true, nil
}

// AddPremiumCredit credits one premium credit.
func (a *MemoryAccount) AddPremiumCredit(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.credits++
	return nil
}

// SpendPremiumCredit debits one premium credit if the balance allows it.
func (a *MemoryAccount) SpendPremiumCredit(context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.credits <= 0 {
		return false, nil
	}
	a.credits--
	return true, nil
}

// Balances returns the current ticket and premium-credit counts.
func (a *MemoryAccount) Balances(context.Context) (int, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.tickets, a.credits, nil
}
