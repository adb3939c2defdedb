package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Test Recipe", "test-recipe"},
		{"croatian diacritics", "Čokoladni muffini", "cokoladni-muffini"},
		{"hyphenated", "Riži-bizi", "rizi-bizi"},
		{"d with stroke", "Đuveč", "djuvec"},
		{"accents", "Crème brûlée", "creme-brulee"},
		{"collapses separators", "  Pita -- od   jabuka!! ", "pita-od-jabuka"},
		{"apostrophe", "Mum's pie", "mums-pie"},
		{"digits", "5 minute salad", "5-minute-salad"},
		{"only punctuation", "!!! ???", ""},
		{"empty", "", ""},
		{"ampersand", "Fish & Chips", "fish-and-chips"},
		{"ampersand without spaces", "Mac&Cheese", "macandcheese"},
		{"punctuation inside words", "3.5 kg salad", "35-kg-salad"},
		{"percent", "100% sok", "100percent-sok"},
		{"underscore", "pita_od_sira", "pitaodsira"},
		{"cyrillic", "Борщ", "borsh"},
		{"serbian cyrillic", "Ћевапи са луком", "cevapi-sa-lukom"},
		{"greek", "Μουσακάς", "moysakas"},
		{"unicode spaces", "Sarma\u00a0i\tkupus", "sarma-i-kupus"},
		{"no transliteration", "日本", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Make(tt.in)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.True(t, Valid(got), "Make output %q must be a valid slug", got)
			}
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("palacinke"))
	assert.True(t, Valid("rizi-bizi-2"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("Palacinke"))
	assert.False(t, Valid("-lead"))
	assert.False(t, Valid("trail-"))
	assert.False(t, Valid("double--hyphen"))
	assert.False(t, Valid("../etc"))
	assert.False(t, Valid("a b"))
}

func TestCandidate(t *testing.T) {
	assert.Equal(t, "test-recipe", Candidate("test-recipe", 0))
	assert.Equal(t, "test-recipe", Candidate("test-recipe", 1))
	assert.Equal(t, "test-recipe-2", Candidate("test-recipe", 2))
	assert.Equal(t, "test-recipe-3", Candidate("test-recipe", 3))
}
