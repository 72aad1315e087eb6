package search

// Highlighter marks the occurrences of a request's terms within display lines.
type Highlighter struct {
	matchers []Matcher
}

// NewHighlighter compiles every term of req once. Terms that fail to compile
// are left out, so highlighting never fails.
func NewHighlighter(req *SearchRequest) *Highlighter {
	h := &Highlighter{}
	if req == nil {
		return h
	}
	for _, term := range req.UniqueTerms() {
		m, err := CompileMatcher(term, req)
		if err != nil {
			continue
		}
		h.matchers = append(h.matchers, m)
	}
	return h
}

// Spans returns the merged, non-overlapping ranges to highlight in line.
func (h *Highlighter) Spans(line string) []Span {
	var all []Span
	for _, m := range h.matchers {
		all = append(all, m.Match(line)...)
	}
	return mergeSpans(all)
}

// Apply rewrites line, passing plain segments through plain and highlighted
// segments through mark.
func (h *Highlighter) Apply(line string, plain, mark func(string) string) string {
	spans := h.Spans(line)
	if len(spans) == 0 {
		return plain(line)
	}
	var out []byte
	pos := 0
	for _, s := range spans {
		if s.Start > pos {
			out = append(out, plain(line[pos:s.Start])...)
		}
		out = append(out, mark(line[s.Start:s.End])...)
		pos = s.End
	}
	if pos < len(line) {
		out = append(out, plain(line[pos:])...)
	}
	return string(out)
}
