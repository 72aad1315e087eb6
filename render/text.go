package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"doc-search/search"
)

const (
	termIndent       = "  "
	occurrenceIndent = "    "
	contextIndent    = "      "
	ellipsis         = "…"
)

// TextOptions controls the text renderer.
type TextOptions struct {
	// Request supplies term order and highlighting. Optional.
	Request *search.SearchRequest
	// Styles enables ANSI styling; nil renders plain text.
	Styles *Styles
	// Width truncates context lines to this many display columns; 0 disables.
	Width int
	// Verbose also lists documents without matches, skipped and failed ones.
	Verbose bool
	// Summary appends the totals footer.
	Summary bool
}

// Text renders a result as human-readable blocks, one per document.
func Text(result *search.SearchResult, opts TextOptions) string {
	var b strings.Builder
	var hl *search.Highlighter
	if opts.Request != nil {
		hl = search.NewHighlighter(opts.Request)
	}
	st := opts.Styles

	first := true
	for _, e := range result.Entries() {
		doc := e.Result
		if doc.Kind != search.KindMatches && !(opts.Verbose || doc.Kind == search.KindFailed) {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false

		switch doc.Kind {
		case search.KindNoMatches:
			fmt.Fprintf(&b, "%s %s\n", paint(st, fileStyle, e.Name), paint(st, mutedStyle, "(no matches)"))
			continue
		case search.KindSkipped:
			fmt.Fprintf(&b, "%s %s\n", paint(st, fileStyle, e.Name), paint(st, warningStyle, "[skipped: "+doc.Reason+"]"))
			continue
		case search.KindFailed:
			fmt.Fprintf(&b, "%s %s\n", paint(st, fileStyle, e.Name), paint(st, failureStyle, "[failed: "+doc.Reason+"]"))
			continue
		}

		b.WriteString(paint(st, fileStyle, e.Name))
		b.WriteByte('\n')
		for _, tm := range doc.Terms {
			fmt.Fprintf(&b, "%s%s %s\n", termIndent, paint(st, termStyle, fmt.Sprintf("%q", tm.Term)),
				paint(st, mutedStyle, plural(len(tm.Occurrences), "line")))
			for _, occ := range tm.Occurrences {
				b.WriteString(occurrenceIndent)
				b.WriteString(paint(st, headerStyle, fmt.Sprintf("page %d, line %d", occ.Page, occ.Line)))
				b.WriteByte('\n')
				for i, line := range occ.Context {
					writeContextLine(&b, line, i == occ.Matched, hl, opts)
				}
			}
		}
	}

	if opts.Summary {
		if !first {
			b.WriteByte('\n')
		}
		terms := []string(nil)
		if opts.Request != nil {
			terms = opts.Request.Terms
		}
		b.WriteString(summaryText(search.Summarize(result, terms), st))
	}
	return b.String()
}

func writeContextLine(b *strings.Builder, line string, matched bool, hl *search.Highlighter, opts TextOptions) {
	prefix := search.ContextLinePrefix
	if matched {
		prefix = search.MatchedLinePrefix
	}
	if opts.Width > 0 {
		avail := opts.Width - runewidth.StringWidth(contextIndent+prefix)
		if avail < 1 {
			avail = 1
		}
		line = runewidth.Truncate(line, avail, ellipsis)
	}

	b.WriteString(contextIndent)
	if matched {
		b.WriteString(paint(opts.Styles, markerStyle, prefix))
	} else {
		b.WriteString(prefix)
	}
	if matched && hl != nil && opts.Styles != nil {
		line = hl.Apply(line,
			func(s string) string { return s },
			func(s string) string { return paint(opts.Styles, matchStyle, s) })
	} else if !matched {
		line = paint(opts.Styles, mutedStyle, line)
	}
	b.WriteString(line)
	b.WriteByte('\n')
}

func summaryText(s search.Summary, st *Styles) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Searched %s: %d matched, %d without matches, %d skipped, %d failed\n",
		plural(s.Searched, "document"), s.Matched, s.NoMatches, s.Skipped, s.Failed)
	for _, t := range s.Terms {
		fmt.Fprintf(&b, "%s%s %s in %s across %s\n", termIndent, paint(st, termStyle, fmt.Sprintf("%q", t.Term)),
			plural(t.Hits, "hit"), plural(t.Lines, "line"), plural(t.Files, "document"))
	}
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%s %ss", search.FormatNumber(n), noun)
}
