package search

import (
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor extracts visible text from HTML documents.
type HTMLExtractor struct{}

// Extract implements the Extractor interface for HTML files.
func (e *HTMLExtractor) Extract(path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	text, err := htmlText(f)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	return Extraction{Text: text, Pages: 1}, nil
}

var htmlSkipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

var htmlBlockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "blockquote": true, "pre": true,
	"title": true, "table": true, "ul": true, "ol": true, "hr": true,
}

// htmlText flattens an HTML document to text, one line per block element.
func htmlText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && htmlSkipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(strings.Join(strings.Fields(n.Data), " "))
			if strings.TrimSpace(n.Data) != "" && n.NextSibling != nil {
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && htmlBlockElements[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}
