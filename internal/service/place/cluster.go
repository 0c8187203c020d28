// internal/service/place/cluster.go

package place

import (
	"fmt"

	"souffle/internal/domain/geo"
	"souffle/internal/domain/place"
	"souffle/internal/domain/souffle"
)

// MinClusterSize is the number of souffles a group needs to become an echo
// place.
const MinClusterSize = 3

// group is an in-progress cluster. The anchor is the first souffle added;
// all membership checks run against it, not against every member.
type group struct {
	anchor  souffle.Souffle
	members []souffle.Souffle
}

// Compute derives the echo places for the given active souffle set. It is a
// pure function recomputed wholesale on demand; there is no incremental
// state to patch.
//
// The grouping is a single greedy pass in input order: each souffle joins
// the first existing group whose anchor lies within the clustering radius
// (strictly), or starts a new group. A souffle in range of two groups joins
// whichever came first; pre-existing groups are never merged. The
// order-dependence is deliberate and observable, so callers must iterate
// their collection in insertion order.
func Compute(souffles []souffle.Souffle) []place.EchoPlace {
	var groups []*group

	for _, s := range souffles {
		placed := false
		for _, g := range groups {
			if geo.Distance(s.Location, g.anchor.Location) < geo.ClusterRadiusMeters {
				g.members = append(g.members, s)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, &group{
				anchor:  s,
				members: []souffle.Souffle{s},
			})
		}
	}

	var places []place.EchoPlace
	for _, g := range groups {
		if len(g.members) < MinClusterSize {
			continue
		}

		var sumLat, sumLng float64
		for _, m := range g.members {
			sumLat += m.Location.Latitude
			sumLng += m.Location.Longitude
		}
		lat := sumLat / float64(len(g.members))
		lng := sumLng / float64(len(g.members))

		places = append(places, place.EchoPlace{
			ID:           placeID(lat, lng),
			Name:         randomName(),
			Latitude:     lat,
			Longitude:    lng,
			SouffleCount: len(g.members),
			Description:  fmt.Sprintf("%d souffles résonnent ici", len(g.members)),
		})
	}

	return places
}

// placeID derives a stable identity from the centroid rounded to 5 decimal
// places, so recomputing the same cluster yields the same id.
func placeID(lat, lng float64) string {
	return fmt.Sprintf("echo-%.5f-%.5f", lat, lng)
}
