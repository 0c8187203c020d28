package place

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souffle/internal/domain/geo"
	"souffle/internal/domain/souffle"
)

// About 9e-6 degrees of latitude per meter; used to lay souffles out at
// known distances along a meridian.
const degPerMeter = 1.0 / 111_195

func at(id string, lat, lng float64) souffle.Souffle {
	return souffle.Souffle{ID: id, Location: geo.Location{Latitude: lat, Longitude: lng}}
}

func TestComputeEmptyAndSmall(t *testing.T) {
	assert.Empty(t, Compute(nil))
	assert.Empty(t, Compute([]souffle.Souffle{at("a", 48.8566, 2.3522)}))
}

func TestComputeThreeNearbySouffles(t *testing.T) {
	base := 48.8566
	souffles := []souffle.Souffle{
		at("a", base, 2.3522),
		at("b", base+5*degPerMeter, 2.3522),
		at("c", base+10*degPerMeter, 2.3522),
	}

	places := Compute(souffles)
	require.Len(t, places, 1)
	assert.Equal(t, 3, places[0].SouffleCount)
	assert.NotEmpty(t, places[0].Name)
	assert.Equal(t, "3 souffles résonnent ici", places[0].Description)
}

func TestComputeCentroidIsMemberMean(t *testing.T) {
	souffles := []souffle.Souffle{
		at("a", 48.85660, 2.35220),
		at("b", 48.85670, 2.35230),
		at("c", 48.85680, 2.35240),
	}

	places := Compute(souffles)
	require.Len(t, places, 1)
	assert.InDelta(t, 48.85670, places[0].Latitude, 1e-9)
	assert.InDelta(t, 2.35230, places[0].Longitude, 1e-9)

	// Centroid of a one-dimensional spread lies between the extremes.
	assert.GreaterOrEqual(t, places[0].Latitude, 48.85660)
	assert.LessOrEqual(t, places[0].Latitude, 48.85680)
}

func TestComputeIDStableAcrossRecomputes(t *testing.T) {
	souffles := []souffle.Souffle{
		at("a", 48.8566, 2.3522),
		at("b", 48.8567, 2.3523),
		at("c", 48.8568, 2.3524),
	}

	first := Compute(souffles)
	second := Compute(souffles)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestComputeGroupsSmallerThanThreeAreDiscarded(t *testing.T) {
	// Two souffles very close together, nothing else nearby: no place,
	// whatever their distance.
	souffles := []souffle.Souffle{
		at("a", 48.8566, 2.3522),
		at("b", 48.8566+20*degPerMeter, 2.3522),
	}
	assert.Empty(t, Compute(souffles))
}

func TestComputeBoundaryIsStrict(t *testing.T) {
	base := 48.8566

	// Two souffles at the anchor, a third sitting past the 50 m radius: the
	// third starts its own group, so no place survives.
	souffles := []souffle.Souffle{
		at("a", base, 2.3522),
		at("b", base, 2.3522),
		at("c", base+50.1*degPerMeter, 2.3522),
	}
	assert.Empty(t, Compute(souffles))

	// Move the third inside the radius and the place appears.
	souffles[2] = at("c", base+49*degPerMeter, 2.3522)
	places := Compute(souffles)
	require.Len(t, places, 1)
	assert.Equal(t, 3, places[0].SouffleCount)
}

func TestComputeAnchorBasedNotTransitive(t *testing.T) {
	base := 48.8566

	// a is the anchor. b at 40 m joins a's group. c at 80 m from a is out of
	// the anchor's range even though it is only 40 m from b: chained
	// membership does not extend the group.
	souffles := []souffle.Souffle{
		at("a", base, 2.3522),
		at("b", base+40*degPerMeter, 2.3522),
		at("c", base+80*degPerMeter, 2.3522),
	}
	assert.Empty(t, Compute(souffles))
}

func TestComputeFirstGroupWins(t *testing.T) {
	base := 48.8566

	// Two anchors 60 m apart, each with a member. A fifth souffle between
	// them is within range of both anchors; it joins the earlier group.
	souffles := []souffle.Souffle{
		at("a1", base, 2.3522),
		at("b1", base+60*degPerMeter, 2.3522),
		at("a2", base+10*degPerMeter, 2.3522),
		at("b2", base+55*degPerMeter, 2.3522),
		at("mid", base+30*degPerMeter, 2.3522),
	}

	places := Compute(souffles)
	require.Len(t, places, 1)
	assert.Equal(t, 3, places[0].SouffleCount, "mid joins the first group in iteration order")
}

func TestComputeMultipleDistinctPlaces(t *testing.T) {
	base := 48.8566
	var souffles []souffle.Souffle
	for i := 0; i < 3; i++ {
		souffles = append(souffles, at(fmt.Sprintf("n%d", i), base+float64(i)*5*degPerMeter, 2.3522))
	}
	for i := 0; i < 4; i++ {
		souffles = append(souffles, at(fmt.Sprintf("s%d", i), base+1000*degPerMeter+float64(i)*5*degPerMeter, 2.3522))
	}

	places := Compute(souffles)
	require.Len(t, places, 2)
	assert.Equal(t, 3, places[0].SouffleCount)
	assert.Equal(t, 4, places[1].SouffleCount)
	for _, p := range places {
		assert.GreaterOrEqual(t, p.SouffleCount, MinClusterSize)
	}
}
