// internal/moderation/wordlists.go

package moderation

// The curated lists are stored in normalized form (lowercase, no diacritics,
// no confusables) because matching runs against normalized text. "encule"
// therefore also catches "Enculé" and "3ncul3".

// forbiddenWords carry the heavy weight. One hit is enough to flag a
// souffle; two are enough to block it.
var forbiddenWords = []string{
	// French
	"connard",
	"connasse",
	"salope",
	"pute",
	"putain",
	"encule",
	"nique",
	"ntm",
	"fdp",
	"batard",
	"pedale",
	"tapette",
	"negre",
	"bougnoule",
	"youpin",
	"tuer",
	"creve",
	"suicide",
	"violer",
	// English spillover, common in French-language feeds
	"fuck",
	"bitch",
	"asshole",
	"cunt",
	"nigger",
	"faggot",
	"kill yourself",
	"kys",
}

// suspiciousWords are milder; they only tip the scale when combined.
var suspiciousWords = []string{
	"idiot",
	"debile",
	"cretin",
	"imbecile",
	"abruti",
	"stupide",
	"moche",
	"degage",
	"ferme ta gueule",
	"ta gueule",
	"gros porc",
	"grosse vache",
	"stupid",
	"loser",
	"ugly",
	"shut up",
}
