package render

import (
	"bytes"
	"html"
	"html/template"

	"doc-search/search"
)

// HTMLOptions controls the HTML report.
type HTMLOptions struct {
	Title   string
	Request *search.SearchRequest
	Verbose bool
}

type htmlLine struct {
	Text    template.HTML
	Matched bool
}

type htmlOccurrence struct {
	Page  int
	Line  int
	Lines []htmlLine
}

type htmlTerm struct {
	Term        string
	Occurrences []htmlOccurrence
}

type htmlDoc struct {
	Name   string
	Kind   string
	Reason string
	Terms  []htmlTerm
}

type htmlPage struct {
	Title   string
	Mode    string
	Docs    []htmlDoc
	Summary search.Summary
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h2 { font-size: 1.1em; margin-bottom: 0.2em; }
pre { background: #f6f8fa; padding: 0.5em; margin: 0.2em 0 0.8em; }
.matched { font-weight: bold; }
.skipped { color: #b45309; }
.failed { color: #b91c1c; }
.muted { color: #6b7280; }
mark { background: #fcd34d; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Mode}}<p class="muted">{{.Mode}}</p>{{end}}
{{range .Docs}}<section class="doc {{.Kind}}">
<h2>{{.Name}}</h2>
{{if eq .Kind "skipped"}}<p class="skipped">skipped: {{.Reason}}</p>{{end}}
{{if eq .Kind "failed"}}<p class="failed">failed: {{.Reason}}</p>{{end}}
{{if eq .Kind "no-matches"}}<p class="muted">no matches</p>{{end}}
{{range .Terms}}<h3>&ldquo;{{.Term}}&rdquo;</h3>
{{range .Occurrences}}<div class="muted">page {{.Page}}, line {{.Line}}</div>
<pre>{{range .Lines}}{{if .Matched}}<span class="matched">&gt;&gt; {{.Text}}</span>{{else}}   {{.Text}}{{end}}
{{end}}</pre>
{{end}}{{end}}</section>
{{end}}<footer>
<p>Searched {{.Summary.Searched}} documents: {{.Summary.Matched}} matched, {{.Summary.NoMatches}} without matches, {{.Summary.Skipped}} skipped, {{.Summary.Failed}} failed.</p>
</footer>
</body>
</html>
`))

// HTML renders a standalone report. Matched terms are wrapped in <mark>.
func HTML(result *search.SearchResult, opts HTMLOptions) (string, error) {
	page := htmlPage{Title: opts.Title}
	if page.Title == "" {
		page.Title = "Search results"
	}

	var hl *search.Highlighter
	var terms []string
	if opts.Request != nil {
		hl = search.NewHighlighter(opts.Request)
		terms = opts.Request.Terms
		page.Mode = opts.Request.ModeDescription()
	}
	page.Summary = search.Summarize(result, terms)

	for _, e := range result.Entries() {
		doc := e.Result
		if doc.Kind != search.KindMatches && !(opts.Verbose || doc.Kind == search.KindFailed) {
			continue
		}
		hd := htmlDoc{Name: e.Name, Kind: doc.Kind.String(), Reason: doc.Reason}
		for _, tm := range doc.Terms {
			ht := htmlTerm{Term: tm.Term}
			for _, occ := range tm.Occurrences {
				ho := htmlOccurrence{Page: occ.Page, Line: occ.Line}
				for i, line := range occ.Context {
					ho.Lines = append(ho.Lines, htmlLine{
						Text:    markLine(hl, line, i == occ.Matched),
						Matched: i == occ.Matched,
					})
				}
				ht.Occurrences = append(ht.Occurrences, ho)
			}
			hd.Terms = append(hd.Terms, ht)
		}
		page.Docs = append(page.Docs, hd)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// markLine escapes line and wraps highlighted spans of a matched line in <mark>.
func markLine(hl *search.Highlighter, line string, matched bool) template.HTML {
	if hl == nil || !matched {
		return template.HTML(html.EscapeString(line))
	}
	return template.HTML(hl.Apply(line, html.EscapeString, func(s string) string {
		return "<mark>" + html.EscapeString(s) + "</mark>"
	}))
}
