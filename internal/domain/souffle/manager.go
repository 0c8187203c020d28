// internal/domain/souffle/manager.go

package souffle

import (
	"context"
	"errors"

	"souffle/internal/domain/geo"
	"souffle/internal/domain/place"
)

var (
	// ErrNoLocation is returned when a create request arrives without a
	// position. Acquiring one is the caller's job; the core only checks the
	// precondition.
	ErrNoLocation = errors.New("no location available")

	// ErrInvalidDuration is returned for lifetimes outside {24h, 48h}.
	ErrInvalidDuration = errors.New("duration must be 24 or 48 hours")
)

// CreateParams describes a souffle to be created. Content is expected to
// have already cleared moderation; the ambient generator sets Simulated and
// bypasses moderation entirely since its content comes from a fixed catalog.
type CreateParams struct {
	Content      Content
	Location     *geo.Location
	Duration     Duration
	StickerID    string
	BackgroundID string
	Simulated    bool
}

// Manager owns the canonical souffle collection and the derived echo-place
// set. Every mutating operation re-derives echo places (reveal excepted) and
// writes through to storage.
type Manager interface {
	// Create appends a new souffle. Fails with ErrNoLocation when no
	// position is supplied; there is no other failure path.
	Create(ctx context.Context, params CreateParams) (*Souffle, error)

	// Get returns a souffle from the active set by id.
	Get(id string) (Souffle, bool)

	// Active returns the non-expired souffles in insertion order.
	Active() []Souffle

	// Reveal flips isRevealed and hasBeenRead for the matching souffle and
	// records the id in the revealed history. Unknown ids are a benign
	// no-op, not an error.
	Reveal(ctx context.Context, id string) error

	// Report removes the souffle from the active collection entirely.
	// Unknown ids are a benign no-op.
	Report(ctx context.Context, id string) error

	// ClearSimulated removes every synthetic souffle, keeping user-authored
	// ones. Calling it twice in a row is a no-op.
	ClearSimulated(ctx context.Context) error

	// Places returns the current derived echo places.
	Places() []place.EchoPlace

	// RevealedIDs returns the revealed-souffle-id history.
	RevealedIDs() []string
}
