// internal/service/ambient/catalog.go

package ambient

// Fixed content catalogs for synthetic souffles. Trusted by construction,
// so the creation path skips moderation for them.
var ambientFeelings = []string{
	"paisible",
	"nostalgique",
	"curieux",
	"rêveur",
	"joyeux",
	"mélancolique",
	"serein",
	"émerveillé",
}

var ambientMessages = []string{
	"Le vent porte des souvenirs ce soir",
	"Quelqu'un a souri ici ce matin",
	"J'aime regarder les gens passer d'ici",
	"Cet endroit me rappelle mon enfance",
	"Il y a une lumière particulière à cette heure",
	"Je reviens toujours m'asseoir ici",
	"Le café d'en face fait le meilleur croissant",
	"On entend les oiseaux malgré la ville",
	"J'ai laissé une pensée pour toi ici",
	"La pluie rend ce coin encore plus beau",
	"Quelqu'un jouait de la guitare ici hier",
	"Premier rendez-vous, juste là, sur ce banc",
	"Les arbres ont tellement grandi depuis",
	"Un inconnu m'a tenu la porte, merci",
	"Ce mur a vu passer tant d'histoires",
	"Je rêve de partir mais je reste pour ça",
}
