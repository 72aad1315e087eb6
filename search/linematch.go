package search

import "strings"

// lineHit is a line that matched one term.
type lineHit struct {
	term  int // index into the matcher slice
	line  int // 0-based line index
	spans []Span
}

// SplitLines splits flattened document text into lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// PageForLine approximates the page of a line by spreading the document's lines
// evenly across its pages. Documents with one page (or none) always report page 1.
func PageForLine(lineIdx, totalLines, totalPages int) int {
	if totalPages <= 1 || totalLines <= 0 {
		return 1
	}
	// floor(lineIdx / (totalLines / totalPages)) without float rounding.
	page := lineIdx*totalPages/totalLines + 1
	return min(page, totalPages)
}

// scanLines runs every matcher over every line, in line order then matcher order.
func scanLines(lines []string, matchers []Matcher) []lineHit {
	var hits []lineHit
	for i, line := range lines {
		for mi, m := range matchers {
			if spans := m.Match(line); len(spans) > 0 {
				hits = append(hits, lineHit{term: mi, line: i, spans: spans})
			}
		}
	}
	return hits
}
