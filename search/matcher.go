package search

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

// Span is a half-open [Start, End) byte range within a line.
type Span struct {
	Start int
	End   int
}

// Matcher finds the occurrences of one search term within a single line.
type Matcher interface {
	Term() string
	Match(line string) []Span
}

// CompileMatchers builds one matcher per unique term, in request order.
// Regex terms that fail to compile return a *PatternCompileError.
func CompileMatchers(req *SearchRequest) ([]Matcher, error) {
	terms := req.UniqueTerms()
	out := make([]Matcher, 0, len(terms))
	for _, term := range terms {
		m, err := CompileMatcher(term, req)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// CompileMatcher builds the matcher for a single term under the request's mode flags.
func CompileMatcher(term string, req *SearchRequest) (Matcher, error) {
	if req.UseFuzzy {
		return newFuzzyMatcher(term, req.FuzzyThreshold), nil
	}

	flags := ""
	if !req.CaseSensitive {
		flags = "(?i)"
	}

	if req.UseRegex {
		// Regex owns its boundary semantics; WholeWord is ignored.
		re, err := regexp.Compile(flags + term)
		if err != nil {
			return nil, &PatternCompileError{Term: term, Err: err}
		}
		return &regexMatcher{term: term, re: re}, nil
	}

	re := regexp.MustCompile(flags + regexp.QuoteMeta(term))
	return &regexMatcher{term: term, re: re, wholeWord: req.WholeWord}, nil
}

// regexMatcher handles both regex and literal terms. Literal terms are escaped;
// whole-word literals additionally require a word boundary on both sides.
type regexMatcher struct {
	term      string
	re        *regexp.Regexp
	wholeWord bool
}

func (m *regexMatcher) Term() string { return m.term }

func (m *regexMatcher) Match(line string) []Span {
	if !m.wholeWord {
		idx := m.re.FindAllStringIndex(line, -1)
		if len(idx) == 0 {
			return nil
		}
		spans := make([]Span, len(idx))
		for i, ix := range idx {
			spans[i] = Span{Start: ix[0], End: ix[1]}
		}
		return spans
	}

	// Go's \b is ASCII-only, so boundaries are checked here against Unicode
	// letters and digits. A rejected candidate resumes one rune later so that
	// overlapping candidates are still considered.
	var spans []Span
	pos := 0
	for pos <= len(line) {
		loc := m.re.FindStringIndex(line[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if isWordBoundary(line, start) && isWordBoundary(line, end) {
			spans = append(spans, Span{Start: start, End: end})
			if end > start {
				pos = end
				continue
			}
		}
		if start >= len(line) {
			break
		}
		_, size := utf8.DecodeRuneInString(line[start:])
		pos = start + size
	}
	return spans
}

// isWordChar reports whether r is a word character (letter, digit or underscore).
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// isWordBoundary reports whether byte offset pos in s sits between a word
// character and a non-word character (or the start/end of s).
func isWordBoundary(s string, pos int) bool {
	before, after := false, false
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:pos])
		before = isWordChar(r)
	}
	if pos < len(s) {
		r, _ := utf8.DecodeRuneInString(s[pos:])
		after = isWordChar(r)
	}
	return before != after
}

// mergeSpans sorts spans and merges overlapping or touching ranges.
func mergeSpans(spans []Span) []Span {
	if len(spans) <= 1 {
		return spans
	}
	sorted := append([]Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	out := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
