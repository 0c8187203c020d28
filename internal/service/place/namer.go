// internal/service/place/namer.go

package place

import "math/rand"

// Echo places get a poetic name drawn at random from a fixed word-pair
// space. Names are stable within one recompute but not across recomputes;
// the id is the stable handle.

var nameNouns = []string{
	"Jardin",
	"Refuge",
	"Clairière",
	"Rivage",
	"Sentier",
	"Passage",
	"Carrefour",
	"Belvédère",
	"Alcôve",
	"Estuaire",
}

var nameAdjectives = []string{
	"des Murmures",
	"des Échos",
	"des Soupirs",
	"des Confidences",
	"des Secrets",
	"des Âmes Perdues",
	"des Pensées Douces",
	"des Rêves Éveillés",
	"du Silence",
	"de l'Aube",
}

func randomName() string {
	noun := nameNouns[rand.Intn(len(nameNouns))]
	adj := nameAdjectives[rand.Intn(len(nameAdjectives))]
	return noun + " " + adj
}
