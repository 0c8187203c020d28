package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souffle/internal/domain/souffle"
)

func TestCheckHardGates(t *testing.T) {
	e := NewEngine()

	t.Run("empty content is blocked", func(t *testing.T) {
		res := e.Check(souffle.Content{})
		assert.Equal(t, StatusBlocked, res.Status)
		assert.Contains(t, res.Reasons, "empty content")
	})

	t.Run("whitespace only is blocked", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "   "})
		assert.Equal(t, StatusBlocked, res.Status)
	})

	t.Run("over 500 characters is blocked before scoring", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: strings.Repeat("a", 501)})
		assert.Equal(t, StatusBlocked, res.Status)
		assert.Contains(t, res.Reasons, "content exceeds 500 characters")
		assert.Zero(t, res.Score)
	})
}

func TestCheckPersonalInfo(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name    string
		message string
		reason  string
	}{
		{"email", "mon email est test@test.com", "contains an email address"},
		{"phone with separators", "appelle moi au 06 12 34 56 78", "contains a phone number"},
		{"phone international", "joignable au +33612345678", "contains a phone number"},
		{"url", "regarde https://example.com/promo", "contains a link"},
		{"bare www url", "va sur www.example.com", "contains a link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Check(souffle.Content{Feeling: "triste", Message: tt.message})
			assert.Equal(t, StatusBlocked, res.Status, "personal info alone must block")
			assert.GreaterOrEqual(t, res.Score, 15)
			assert.Contains(t, res.Reasons, tt.reason)
		})
	}
}

func TestCheckBlockedReturnsNoContent(t *testing.T) {
	e := NewEngine()

	res := e.Check(souffle.Content{Feeling: "triste", Message: "mon email est test@test.com"})
	require.Equal(t, StatusBlocked, res.Status)
	assert.Empty(t, res.Content.Message, "blocked results must not echo content back")
}

func TestCheckForbiddenWords(t *testing.T) {
	e := NewEngine()

	t.Run("single forbidden word flags and masks", func(t *testing.T) {
		res := e.Check(souffle.Content{Feeling: "enerve", Message: "quel connard celui-la"})
		require.Equal(t, StatusFlagged, res.Status)
		assert.GreaterOrEqual(t, res.Score, 5)
		assert.Equal(t, "quel ******* celui-la", res.Content.Message)
		assert.Equal(t, "enerve", res.Content.Feeling, "only the message field is sanitized")
	})

	t.Run("leetspeak obfuscation is caught", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "esp3ce de s4lope"})
		require.Equal(t, StatusFlagged, res.Status)
		assert.Contains(t, res.Reasons, "forbidden word: salope")
	})

	t.Run("diacritics are stripped before matching", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "sale enculé va"})
		require.Equal(t, StatusFlagged, res.Status)
		assert.Contains(t, res.Reasons, "forbidden word: encule")
	})

	t.Run("same word twice scores once", func(t *testing.T) {
		once := e.Check(souffle.Content{Message: "connard"})
		twice := e.Check(souffle.Content{Message: "connard connard"})
		assert.Equal(t, once.Score, twice.Score)
	})

	t.Run("two distinct forbidden words block", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "salope et connard"})
		assert.Equal(t, StatusBlocked, res.Status)
		assert.GreaterOrEqual(t, res.Score, 10)
	})
}

func TestCheckSuspiciousWords(t *testing.T) {
	e := NewEngine()

	t.Run("one suspicious word alone is allowed", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "il est un peu idiot"})
		assert.Equal(t, StatusAllowed, res.Status)
		assert.Equal(t, 2, res.Score)
		assert.Equal(t, "il est un peu idiot", res.Content.Message, "allowed content is unchanged")
	})

	t.Run("two suspicious words flag", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "cet idiot est stupide"})
		require.Equal(t, StatusFlagged, res.Status)
		assert.Equal(t, "cet ***** est *******", res.Content.Message)
	})
}

func TestCheckStructuralHeuristics(t *testing.T) {
	e := NewEngine()

	t.Run("caps only scores on long shouting", func(t *testing.T) {
		short := e.Check(souffle.Content{Message: "OK SUPER"})
		assert.Zero(t, short.Score, "short caps are fine")

		long := e.Check(souffle.Content{Message: "JE SUIS VRAIMENT TRES EN COLERE AUJOURD HUI"})
		assert.Equal(t, 1, long.Score)
		assert.Contains(t, long.Reasons, "excessive capital letters")
	})

	t.Run("repeated characters score", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "je suis heureuuuuux"})
		assert.Equal(t, 3, res.Score)
		assert.Contains(t, res.Reasons, "repeated characters")
	})

	t.Run("three repeats are not a run", func(t *testing.T) {
		res := e.Check(souffle.Content{Message: "ouuui merci"})
		assert.NotContains(t, res.Reasons, "repeated characters")
	})
}

func TestSanitizeIdempotent(t *testing.T) {
	e := NewEngine()

	first := e.Check(souffle.Content{Feeling: "enerve", Message: "cet idiot est stupide"})
	require.Equal(t, StatusFlagged, first.Status)

	second := e.Check(first.Content)
	assert.Equal(t, first.Content.Message, second.Content.Message,
		"masked text contains no words left to re-match")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bonjour", "bonjour"},
		{"Enculé", "encule"},
		{"s4l0pe", "salope"},
		{"pr€nds ç4", "prends ca"},
		{"d!sparais", "disparais"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}
