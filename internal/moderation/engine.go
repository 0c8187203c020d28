// internal/moderation/engine.go

package moderation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"souffle/internal/domain/souffle"
)

// Status classifies a candidate souffle's content
type Status string

const (
	StatusAllowed Status = "allowed"
	StatusFlagged Status = "flagged"
	StatusBlocked Status = "blocked"
)

// Decision thresholds and score weights. Scoring is accumulative, not
// first-match: every check runs and the total decides.
const (
	MaxContentLength = 500

	blockThreshold = 10
	flagThreshold  = 4

	personalInfoWeight  = 15
	forbiddenWordWeight = 5
	suspiciousWeight    = 2
	capsWeight          = 1
	repetitionWeight    = 3
)

// Result is the structured outcome of a moderation pass. Blocked results
// carry reasons only; flagged results carry a sanitized copy of the content.
type Result struct {
	Status  Status          `json:"status"`
	Score   int             `json:"score"`
	Reasons []string        `json:"reasons,omitempty"`
	Content souffle.Content `json:"content"`
}

// Engine scores free-text content against word lists and structural
// heuristics. It is a pure function of the content: no history, no
// reputation, no side effects.
type Engine struct {
	forbidden  []string
	suspicious []string

	emailRe *regexp.Regexp
	phoneRe *regexp.Regexp
	urlRe   *regexp.Regexp
}

// NewEngine creates a moderation engine with the curated word lists.
func NewEngine() *Engine {
	return &Engine{
		forbidden:  forbiddenWords,
		suspicious: suspiciousWords,
		emailRe:    regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		// French formats: +33 or 0, then 9 digits with optional separators.
		phoneRe: regexp.MustCompile(`(\+33|0)\s*[1-9]([\s.\-]?\d{2}){4}`),
		urlRe:   regexp.MustCompile(`(https?://|www\.)\S+`),
	}
}

// Check classifies the content. The hard length gate runs before any
// scoring; regex and structural checks run against the raw text while
// keyword matching runs against the normalized text.
func (e *Engine) Check(content souffle.Content) Result {
	raw := content.Combined()

	if strings.TrimSpace(raw) == "" {
		return Result{Status: StatusBlocked, Reasons: []string{"empty content"}}
	}
	if utf8.RuneCountInString(raw) > MaxContentLength {
		return Result{Status: StatusBlocked, Reasons: []string{"content exceeds 500 characters"}}
	}

	var (
		score   int
		reasons []string
		toMask  []string
	)

	// Structural checks on the raw blob. One hit per category is enough to
	// add that category's weight; further occurrences add nothing.
	if e.emailRe.MatchString(raw) {
		score += personalInfoWeight
		reasons = append(reasons, "contains an email address")
	}
	if e.phoneRe.MatchString(raw) {
		score += personalInfoWeight
		reasons = append(reasons, "contains a phone number")
	}
	if e.urlRe.MatchString(raw) {
		score += personalInfoWeight
		reasons = append(reasons, "contains a link")
	}

	// Keyword checks on the normalized blob. Each distinct word contributes
	// once, however many times it occurs.
	normalized := Normalize(raw)
	for _, w := range e.forbidden {
		if strings.Contains(normalized, w) {
			score += forbiddenWordWeight
			reasons = append(reasons, "forbidden word: "+w)
			toMask = append(toMask, w)
		}
	}
	for _, w := range e.suspicious {
		if strings.Contains(normalized, w) {
			score += suspiciousWeight
			reasons = append(reasons, "suspicious word: "+w)
			toMask = append(toMask, w)
		}
	}

	if ratio, letters := uppercaseRatio(raw); letters > 0 && ratio > 0.5 && utf8.RuneCountInString(raw) > 20 {
		score += capsWeight
		reasons = append(reasons, "excessive capital letters")
	}
	if hasRepeatedRun(raw, 4) {
		score += repetitionWeight
		reasons = append(reasons, "repeated characters")
	}

	switch {
	case score >= blockThreshold:
		return Result{Status: StatusBlocked, Score: score, Reasons: reasons}
	case score >= flagThreshold:
		sanitized := content
		sanitized.Message = maskWords(content.Message, toMask)
		return Result{Status: StatusFlagged, Score: score, Reasons: reasons, Content: sanitized}
	default:
		return Result{Status: StatusAllowed, Score: score, Reasons: reasons, Content: content}
	}
}

// Normalize lowercases the text, strips diacritics and substitutes a fixed
// table of confusable characters, so that "3ncul3" and "Enculé" both reduce
// to the canonical list entry. Used for keyword matching only.
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		stripped = lowered
	}

	return confusables.Replace(stripped)
}

// confusables defeats simple leetspeak obfuscation.
var confusables = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"@", "a",
	"$", "s",
	"€", "e",
	"!", "i",
)

// uppercaseRatio returns the share of letters that are uppercase, and the
// letter count so callers can ignore letterless blobs.
func uppercaseRatio(text string) (float64, int) {
	var upper, letters int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0, 0
	}
	return float64(upper) / float64(letters), letters
}

// hasRepeatedRun reports whether any character occurs at least n times
// consecutively.
func hasRepeatedRun(text string, n int) bool {
	var (
		last rune
		run  int
	)
	for _, r := range text {
		if r == last {
			run++
		} else {
			last = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}

// maskWords replaces every queued word, case-insensitively, with asterisks
// of equal length. Masked text contains no forbidden words to re-match, so
// sanitizing twice is a no-op.
func maskWords(text string, words []string) string {
	for _, w := range words {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(w))
		if err != nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat("*", utf8.RuneCountInString(m))
		})
	}
	return text
}
