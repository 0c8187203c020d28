// internal/domain/place/model.go

package place

// EchoPlace is a derived aggregate: a spot on the map where at least three
// active souffles sit within clustering range of each other. It is
// recomputed from scratch on every souffle collection change and cached for
// display; it is never a source of persistence truth.
type EchoPlace struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	SouffleCount int     `json:"souffle_count"`
	Description  string  `json:"description"`
}
