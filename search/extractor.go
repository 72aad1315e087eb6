package search

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"doc-search/search/pdf"
)

// Extraction is the flattened text of a document.
// Pages is the number of source pages (1 for formats without pages).
type Extraction struct {
	Text  string
	Pages int
}

// Extractor turns a document on disk into plain text.
// Implementations return *ExtractionError for any read or parse failure.
type Extractor interface {
	Extract(path string) (Extraction, error)
}

// ExtractorRegistry holds extractors keyed by lower-case extension (without dot).
// It is populated before a search starts and only read afterwards.
type ExtractorRegistry struct {
	extractors map[string]Extractor
}

// NewExtractorRegistry creates a registry with the core pdf, txt and docx extractors.
func NewExtractorRegistry() *ExtractorRegistry {
	reg := &ExtractorRegistry{
		extractors: make(map[string]Extractor),
	}
	reg.Register("pdf", &PDFExtractor{})
	reg.Register("txt", &TextExtractor{})
	reg.Register("docx", &DOCXExtractor{})
	return reg
}

// RegisterExtended adds the optional text-like, web and mail formats.
func (r *ExtractorRegistry) RegisterExtended() {
	for _, ext := range []string{"md", "log", "csv"} {
		r.Register(ext, &TextExtractor{})
	}
	r.Register("html", &HTMLExtractor{})
	r.Register("htm", &HTMLExtractor{})
	r.Register("eml", &EMLExtractor{})
	r.Register("mbox", &MBOXExtractor{})
	r.Register("msg", &MSGExtractor{})
}

// Register sets the extractor for an extension, replacing any previous one.
func (r *ExtractorRegistry) Register(ext string, e Extractor) {
	r.extractors[normalizeExt(ext)] = e
}

// GetExtractor returns the extractor for a given file extension (with or without dot).
func (r *ExtractorRegistry) GetExtractor(ext string) (Extractor, bool) {
	extractor, exists := r.extractors[normalizeExt(ext)]
	return extractor, exists
}

// Supports reports whether path has a registered extension.
func (r *ExtractorRegistry) Supports(path string) bool {
	_, ok := r.GetExtractor(filepath.Ext(path))
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *ExtractorRegistry) Extensions() []string {
	out := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract dispatches to the extractor registered for path's extension.
func (r *ExtractorRegistry) Extract(path string) (Extraction, error) {
	e, ok := r.GetExtractor(filepath.Ext(path))
	if !ok {
		return Extraction{}, &ExtractionError{Path: path, Err: ErrUnsupportedFormat}
	}
	return e.Extract(path)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// PDFExtractor extracts page text with ledongthuc/pdf, falling back to pdfcpu
// content streams when the primary reader cannot open the file.
type PDFExtractor struct{}

// Extract implements the Extractor interface for PDF files. Pages are joined
// with newlines; a page without text contributes an empty string.
func (e *PDFExtractor) Extract(path string) (Extraction, error) {
	pages, err := readPDFPages(path)
	if err != nil {
		fallback, ferr := pdf.ExtractPages(path, 0, 0)
		if ferr != nil {
			return Extraction{}, &ExtractionError{Path: path, Err: fmt.Errorf("%w (fallback: %v)", err, ferr)}
		}
		pages = fallback
	}
	return Extraction{Text: strings.Join(pages, "\n"), Pages: len(pages)}, nil
}

func readPDFPages(path string) (pages []string, err error) {
	// Guard against any panics from the PDF library.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := lpdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := reader.NumPage()
	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = pdfPageText(reader, i)
	}
	return pages, nil
}

// pdfPageText returns the text of one page, or "" when the page has none or
// cannot be decoded.
func pdfPageText(reader *lpdf.Reader, num int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// TextExtractor reads plain text files. A UTF-8 or UTF-16 byte order mark
// selects the decoding; invalid UTF-8 is replaced with U+FFFD.
type TextExtractor struct{}

// Extract implements the Extractor interface for text files.
func (e *TextExtractor) Extract(path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(r)
	dropPageCache(f)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	return Extraction{Text: normalizeNewlines(string(data)), Pages: 1}, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// DOCXExtractor extracts paragraph text from .docx files (Office Open XML).
type DOCXExtractor struct{}

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Extract implements the Extractor interface for DOCX files. Paragraphs are
// joined with newlines in document order.
func (e *DOCXExtractor) Extract(path string) (Extraction, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return Extraction{}, &ExtractionError{Path: path, Err: err}
		}
		paragraphs, err := docxParagraphs(rc)
		rc.Close()
		if err != nil {
			return Extraction{}, &ExtractionError{Path: path, Err: fmt.Errorf("word/document.xml: %w", err)}
		}
		return Extraction{Text: strings.Join(paragraphs, "\n"), Pages: 1}, nil
	}
	return Extraction{}, &ExtractionError{Path: path, Err: errors.New("word/document.xml not found")}
}

// docxParagraphs streams WordprocessingML and collects the text of each <w:p>.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var paragraphs []string
	var stack []*strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteByte('\t')
				}
			case "br", "cr":
				if len(stack) > 0 {
					stack[len(stack)-1].WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(stack) > 0 {
					paragraphs = append(paragraphs, stack[len(stack)-1].String())
					stack = stack[:len(stack)-1]
				}
			}
		case xml.CharData:
			if inText && len(stack) > 0 {
				stack[len(stack)-1].Write(t)
			}
		}
	}
	return paragraphs, nil
}
