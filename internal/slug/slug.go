// Package slug turns titles into URL-safe recipe identifiers.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Make builds a lowercase ASCII slug. Letters and common symbols are
// transliterated ("&" -> "and"). Other punctuation is removed without
// splitting words, so "3.5 kg" becomes "35-kg". Runs of spaces and hyphens
// collapse into one hyphen. The result may be empty.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFC.String(s) {
		if r == '-' {
			b.WriteByte(' ')
			continue
		}
		if rep, ok := charMap[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteString(fold(r))
	}

	kept := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, b.String())

	return strings.ToLower(strings.Join(strings.Fields(kept), "-"))
}

// fold drops combining marks from r ("č" -> "c"). Letters that do not reduce
// to ASCII come back unchanged and are removed by Make.
func fold(r rune) string {
	if r <= unicode.MaxASCII {
		return string(r)
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, string(r))
	if err != nil {
		return string(r)
	}
	return folded
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return validPattern.MatchString(s)
}

// Candidate returns the n-th probe for base: base itself for n <= 1,
// base-n otherwise.
func Candidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
