package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ScannedTextThreshold is the minimum number of characters (after trimming)
// a document must yield to be searched.
const ScannedTextThreshold = 50

// IsScanned reports whether extracted text is too short to be worth searching.
func IsScanned(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < ScannedTextThreshold
}

// SearchDocument runs the single-document pipeline: extract, classify scanned
// documents, match every term line by line and assemble the context windows.
// It never panics; any fault becomes a KindFailed result.
func SearchDocument(path string, req *SearchRequest, registry *ExtractorRegistry) (result DocumentResult) {
	defer func() {
		if r := recover(); r != nil {
			result = FailedResult(fmt.Errorf("search %s: panic: %v", path, r))
		}
	}()

	ext, err := registry.Extract(path)
	if err != nil {
		return FailedResult(err)
	}
	return SearchText(ext, req)
}

// SearchText matches already-extracted text against req.
func SearchText(ext Extraction, req *SearchRequest) DocumentResult {
	if IsScanned(ext.Text) {
		return SkippedResult(ScannedReason)
	}

	matchers, err := CompileMatchers(req)
	if err != nil {
		return FailedResult(err)
	}

	lines := SplitLines(ext.Text)
	hits := scanLines(lines, matchers)
	if len(hits) == 0 {
		return NoMatchResult()
	}

	grouped := make([][]MatchOccurrence, len(matchers))
	seen := make([]map[occurrenceKey]bool, len(matchers))
	for _, h := range hits {
		page := PageForLine(h.line, len(lines), ext.Pages)
		occ := AssembleContext(lines, h.line, req.ContextWindow, page)
		occ.Hits = len(h.spans)

		k := occ.key()
		if seen[h.term] == nil {
			seen[h.term] = make(map[occurrenceKey]bool)
		}
		if seen[h.term][k] {
			continue
		}
		seen[h.term][k] = true
		grouped[h.term] = append(grouped[h.term], occ)
	}

	var terms []TermMatches
	for i, m := range matchers {
		if len(grouped[i]) == 0 {
			continue
		}
		terms = append(terms, TermMatches{Term: m.Term(), Occurrences: grouped[i]})
	}
	return MatchesResult(terms)
}
