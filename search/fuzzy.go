package search

import (
	"math"
	"regexp"
	"strings"

	"github.com/xrash/smetrics"
)

// tokenRegex splits a line into word-like tokens.
var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Similarity returns a 0-100 score for two strings, compared case-insensitively
// by character. It is the indel ratio: 100 * (len(a)+len(b)-distance) / (len(a)+len(b)),
// where lengths count runes and distance counts insertions and deletions only.
func Similarity(a, b string) int {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	ea, eb := runeAlphabet(ra, rb)
	// A substitution costs one deletion plus one insertion.
	dist := smetrics.WagnerFischer(ea, eb, 1, 1, 2)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// Bytes reserved for runes that occur in only one of the two strings.
const (
	onlyInA = 0xFE
	onlyInB = 0xFF
)

// runeAlphabet re-encodes ra and rb one byte per rune so that a byte-wise edit
// distance equals the rune-wise one. Shared runes get distinct bytes; runes
// present in one string only can never match and share a single byte per side.
// Past 254 shared runes the remainder are encoded as unshared, which can only
// lower the score.
func runeAlphabet(ra, rb []rune) (string, string) {
	inB := make(map[rune]bool, len(rb))
	for _, r := range rb {
		inB[r] = true
	}
	codes := make(map[rune]byte)
	for _, r := range ra {
		if _, ok := codes[r]; !ok && inB[r] && len(codes) < onlyInA {
			codes[r] = byte(len(codes))
		}
	}
	encode := func(rs []rune, other byte) string {
		out := make([]byte, len(rs))
		for i, r := range rs {
			if c, ok := codes[r]; ok {
				out[i] = c
			} else {
				out[i] = other
			}
		}
		return string(out)
	}
	return encode(ra, onlyInA), encode(rb, onlyInB)
}

// fuzzyMatcher scores every token of a line against the term.
type fuzzyMatcher struct {
	term      string
	threshold int
}

func newFuzzyMatcher(term string, threshold int) *fuzzyMatcher {
	return &fuzzyMatcher{term: term, threshold: threshold}
}

func (m *fuzzyMatcher) Term() string { return m.term }

// Match returns one span per distinct matching token, located at the token's
// first occurrence as a token in the line.
func (m *fuzzyMatcher) Match(line string) []Span {
	var spans []Span
	seen := make(map[string]bool)
	for _, loc := range tokenRegex.FindAllStringIndex(line, -1) {
		token := line[loc[0]:loc[1]]
		if seen[token] {
			continue
		}
		seen[token] = true
		if Similarity(token, m.term) < m.threshold {
			continue
		}
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}
