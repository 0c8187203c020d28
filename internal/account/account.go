// internal/account/account.go

package account

import "context"

// Account exposes the two numeric balances the core consumes: revealable
// tickets and premium credits. The balances live elsewhere; this interface
// only debits and credits them.
type Account interface {
	// SpendTicket debits one ticket. Returns false when the balance is
	// already empty; the balance is never driven negative.
	SpendTicket(ctx context.Context) (bool, error)

	// AddPremiumCredit credits one premium credit.
	AddPremiumCredit(ctx context.Context) error

	// SpendPremiumCredit debits one premium credit. Returns false when the
	// balance is already empty.
	SpendPremiumCredit(ctx context.Context) (bool, error)

	// Balances returns the current ticket and premium-credit counts.
	Balances(ctx context.Context) (tickets int, credits int, err error)
}
