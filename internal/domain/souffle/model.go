// internal/domain/souffle/model.go

package souffle

import (
	"time"

	"souffle/internal/domain/geo"
)

// Duration is the lifetime a souffle is given at creation
type Duration int

const (
	Duration24h Duration = 24
	Duration48h Duration = 48
)

// Valid reports whether d is one of the two allowed lifetimes
func (d Duration) Valid() bool {
	return d == Duration24h || d == Duration48h
}

// Hours returns the lifetime as a time.Duration
func (d Duration) Hours() time.Duration {
	return time.Duration(d) * time.Hour
}

// Content is the structured text payload of a souffle. All three fields are
// plain strings; Feeling and Wish may be empty. The combined length is
// bounded by moderation, not here.
type Content struct {
	Feeling string `json:"feeling"`
	Message string `json:"message"`
	Wish    string `json:"wish,omitempty"`
}

// Combined returns the three fields joined into one blob, the unit the
// moderation engine scores.
func (c Content) Combined() string {
	return c.Feeling + " " + c.Message + " " + c.Wish
}

// Souffle is an ephemeral, location-anchored message. Coordinates and
// content are fixed at creation; only the reveal flags ever flip, and only
// from false to true.
type Souffle struct {
	ID           string       `json:"id"`
	Content      Content      `json:"content"`
	Location     geo.Location `json:"location"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
	IsRevealed   bool         `json:"is_revealed"`
	HasBeenRead  bool         `json:"has_been_read"`
	IsSimulated  bool         `json:"is_simulated"`
	ReportCount  int          `json:"report_count,omitempty"`
	StickerID    string       `json:"sticker_id,omitempty"`
	BackgroundID string       `json:"background_id,omitempty"`
}

// Expired reports whether the souffle is past its lifetime at the given
// instant. Expired souffles are excluded from every active view; physical
// deletion happens on the next persisted write cycle.
func (s Souffle) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SweepExpired returns the subset of souffles still alive at now, preserving
// insertion order.
func SweepExpired(souffles []Souffle, now time.Time) []Souffle {
	alive := make([]Souffle, 0, len(souffles))
	for _, s := range souffles {
		if !s.Expired(now) {
			alive = append(alive, s)
		}
	}
	return alive
}
