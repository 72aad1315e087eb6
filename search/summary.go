package search

// TermSummary aggregates one term across all matched documents.
type TermSummary struct {
	Term  string
	Files int // documents with at least one matching line
	Lines int // matching lines
	Hits  int // occurrences on those lines
}

// Summary counts the outcome of a search.
type Summary struct {
	Searched  int
	Matched   int
	NoMatches int
	Skipped   int
	Failed    int
	Terms     []TermSummary
}

// Summarize computes per-document and per-term totals. Terms are listed in
// the request order given by terms; terms that never matched are included
// with zero counts.
func Summarize(result *SearchResult, terms []string) Summary {
	var s Summary
	index := make(map[string]int)
	for _, t := range terms {
		if _, ok := index[t]; ok {
			continue
		}
		index[t] = len(s.Terms)
		s.Terms = append(s.Terms, TermSummary{Term: t})
	}

	for _, e := range result.Entries() {
		s.Searched++
		switch e.Result.Kind {
		case KindMatches:
			s.Matched++
		case KindNoMatches:
			s.NoMatches++
		case KindSkipped:
			s.Skipped++
		case KindFailed:
			s.Failed++
		}
		for _, tm := range e.Result.Terms {
			i, ok := index[tm.Term]
			if !ok {
				i = len(s.Terms)
				index[tm.Term] = i
				s.Terms = append(s.Terms, TermSummary{Term: tm.Term})
			}
			s.Terms[i].Files++
			s.Terms[i].Lines += len(tm.Occurrences)
			s.Terms[i].Hits += tm.Hits()
		}
	}
	return s
}
