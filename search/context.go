package search

// contextBounds returns the inclusive line range [first, last] of the window
// around line index idx.
func contextBounds(idx, window, lineCount int) (first, last int) {
	first = max(0, idx-window)
	last = min(lineCount-1, idx+window)
	return first, last
}

// AssembleContext builds the occurrence for the line at index idx (0-based) with
// window lines on each side. The returned Context shares no memory with lines.
func AssembleContext(lines []string, idx, window, page int) MatchOccurrence {
	first, last := contextBounds(idx, window, len(lines))
	ctx := make([]string, last-first+1)
	copy(ctx, lines[first:last+1])
	return MatchOccurrence{
		Page:    page,
		Line:    idx + 1,
		Context: ctx,
		Matched: idx - first,
	}
}
