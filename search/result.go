package search

import (
	"strings"
)

// Markers used when a context window is flattened into text.
const (
	MatchedLinePrefix = ">> "
	ContextLinePrefix = "   "
)

// ScannedReason is the skip reason for documents with too little extractable text.
const ScannedReason = "scanned/empty"

// MatchOccurrence is one matching line of a document together with its context window.
type MatchOccurrence struct {
	Page    int      // 1-based, approximate for PDFs
	Line    int      // 1-based within the flattened document text
	Context []string // lines of the window, in document order
	Matched int      // index into Context of the matching line
	Hits    int      // occurrences of the term on the matching line
}

// MatchedText returns the matching line itself.
func (m MatchOccurrence) MatchedText() string {
	if m.Matched < 0 || m.Matched >= len(m.Context) {
		return ""
	}
	return m.Context[m.Matched]
}

// MarkedContext returns the context lines with the matching line prefixed by
// MatchedLinePrefix and every other line by ContextLinePrefix.
func (m MatchOccurrence) MarkedContext() []string {
	out := make([]string, len(m.Context))
	for i, line := range m.Context {
		if i == m.Matched {
			out[i] = MatchedLinePrefix + line
		} else {
			out[i] = ContextLinePrefix + line
		}
	}
	return out
}

// ContextText returns MarkedContext joined with newlines.
func (m MatchOccurrence) ContextText() string {
	return strings.Join(m.MarkedContext(), "\n")
}

// key identifies an occurrence by value for de-duplication.
func (m MatchOccurrence) key() occurrenceKey {
	return occurrenceKey{page: m.Page, line: m.Line, context: m.ContextText()}
}

type occurrenceKey struct {
	page    int
	line    int
	context string
}

// TermMatches holds the occurrences of one term, ordered by (page, line).
type TermMatches struct {
	Term        string
	Occurrences []MatchOccurrence
}

// Hits returns the number of term occurrences across all matching lines.
func (t TermMatches) Hits() int {
	n := 0
	for _, o := range t.Occurrences {
		n += max(o.Hits, 1)
	}
	return n
}

// ResultKind tags the variant held by a DocumentResult.
type ResultKind int

const (
	// KindNoMatches means the document was searched and nothing matched.
	KindNoMatches ResultKind = iota
	// KindMatches means at least one term matched.
	KindMatches
	// KindSkipped means the document was not searched (scanned or empty).
	KindSkipped
	// KindFailed means extraction or matching failed for this document.
	KindFailed
)

func (k ResultKind) String() string {
	switch k {
	case KindNoMatches:
		return "no-matches"
	case KindMatches:
		return "matches"
	case KindSkipped:
		return "skipped"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DocumentResult is the outcome of searching one document.
// Only the fields belonging to Kind are populated.
type DocumentResult struct {
	Kind   ResultKind
	Terms  []TermMatches // KindMatches, in request term order
	Reason string        // KindSkipped reason or KindFailed description
}

// NoMatchResult returns the result for a document that was searched without matches.
func NoMatchResult() DocumentResult {
	return DocumentResult{Kind: KindNoMatches}
}

// MatchesResult returns a match result, or NoMatchResult when terms is empty.
func MatchesResult(terms []TermMatches) DocumentResult {
	if len(terms) == 0 {
		return NoMatchResult()
	}
	return DocumentResult{Kind: KindMatches, Terms: terms}
}

// SkippedResult returns a result for a document that was not searched.
func SkippedResult(reason string) DocumentResult {
	return DocumentResult{Kind: KindSkipped, Reason: reason}
}

// FailedResult returns a result describing why a document could not be searched.
func FailedResult(err error) DocumentResult {
	desc := "unknown error"
	if err != nil {
		desc = err.Error()
	}
	return DocumentResult{Kind: KindFailed, Reason: desc}
}

// Occurrences returns the occurrences recorded for term, or nil.
func (d DocumentResult) Occurrences(term string) []MatchOccurrence {
	for _, t := range d.Terms {
		if t.Term == term {
			return t.Occurrences
		}
	}
	return nil
}

// OccurrenceCount returns the number of matching lines across all terms.
func (d DocumentResult) OccurrenceCount() int {
	n := 0
	for _, t := range d.Terms {
		n += len(t.Occurrences)
	}
	return n
}

// Entry pairs a document name with its result.
type Entry struct {
	Name   string
	Result DocumentResult
}

// SearchResult maps document names to results, keeping discovery order.
// A SearchResult returned by the coordinator must be treated as read-only.
type SearchResult struct {
	order   []string
	entries map[string]DocumentResult
}

// NewSearchResult builds a result from entries in the given order.
// A repeated name keeps its first position and its last result.
func NewSearchResult(entries ...Entry) *SearchResult {
	r := &SearchResult{entries: make(map[string]DocumentResult, len(entries))}
	for _, e := range entries {
		r.set(e.Name, e.Result)
	}
	return r
}

func (r *SearchResult) set(name string, doc DocumentResult) {
	if r.entries == nil {
		r.entries = make(map[string]DocumentResult)
	}
	if _, ok := r.entries[name]; !ok {
		r.order = append(r.order, name)
	}
	r.entries[name] = doc
}

// Len returns the number of documents in the result.
func (r *SearchResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Names returns the document names in discovery order.
func (r *SearchResult) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Get returns the result recorded for name.
func (r *SearchResult) Get(name string) (DocumentResult, bool) {
	if r == nil {
		return DocumentResult{}, false
	}
	d, ok := r.entries[name]
	return d, ok
}

// Entries returns all entries in discovery order.
func (r *SearchResult) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Entry{Name: name, Result: r.entries[name]})
	}
	return out
}

// Matched returns only the entries that have at least one match, in discovery order.
func (r *SearchResult) Matched() []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Result.Kind == KindMatches {
			out = append(out, e)
		}
	}
	return out
}
