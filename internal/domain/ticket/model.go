// internal/domain/ticket/model.go

package ticket

import (
	"time"

	"souffle/internal/domain/geo"
)

// Lifetime is the fixed validity window of a suspended ticket.
const Lifetime = 48 * time.Hour

// SuspendedTicket is a location-pinned gift that one passerby can claim for
// a premium credit. Claiming consumes the ticket; it never lingers in the
// collection as claimed.
type SuspendedTicket struct {
	ID        string       `json:"id"`
	Location  geo.Location `json:"location"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	IsClaimed bool         `json:"is_claimed"`
}

// Expired reports whether the ticket is past its validity window at now.
func (t SuspendedTicket) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// SweepExpired returns the tickets still valid at now, preserving order.
func SweepExpired(tickets []SuspendedTicket, now time.Time) []SuspendedTicket {
	alive := make([]SuspendedTicket, 0, len(tickets))
	for _, t := range tickets {
		if !t.Expired(now) {
			alive = append(alive, t)
		}
	}
	return alive
}
