// Package pdf recovers page text from PDF content streams with pdfcpu. It is
// used when the primary reader cannot open a file.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Default caps for PDF text extraction.
const (
	DefaultPageCap    = 2000       // maximum number of pages to process
	DefaultPerPageCap = 128 * 1024 // 128 KiB per-page text cap
)

// pdfcpu names content dumps <name>_Content_page_<n>.txt.
var pageFileRe = regexp.MustCompile(`_(\d+)\.txt$`)

// ExtractPages returns the text of each page, in page order. Pages whose content
// stream carries no string literals are returned as "".
//   - pageCap: maximum number of pages to include (use <=0 for default)
//   - perPageCap: maximum bytes of text per page (use <=0 for default)
func ExtractPages(path string, pageCap, perPageCap int) (pages []string, err error) {
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	if perPageCap <= 0 {
		perPageCap = DefaultPerPageCap
	}

	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu page count: %w", err)
	}
	count = min(count, pageCap)

	tmpDir, err := os.MkdirTemp("", "doc-search-pdfcpu-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu ExtractContentFile: %w", err)
	}

	ents, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	pages = make([]string, count)
	for _, de := range ents {
		if de.IsDir() {
			continue
		}
		m := pageFileRe.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > count {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, de.Name()))
		if err != nil || len(data) == 0 {
			continue
		}
		txt := normalizeSpace(stringLiterals(string(data), perPageCap))
		if len(txt) > perPageCap {
			txt = txt[:perPageCap]
		}
		pages[n-1] = txt
	}
	return pages, nil
}

// stringLiterals collects the text inside balanced parentheses of a content
// stream, honoring backslash escapes. Output is capped at maxOut bytes.
func stringLiterals(s string, maxOut int) string {
	var out strings.Builder
	depth := 0
	escape := false
	in := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !in {
			if c == '(' {
				in = true
				depth = 1
			}
			continue
		}
		if escape {
			switch c {
			case 'n':
				out.WriteByte(' ')
			case 't':
				out.WriteByte('\t')
			default:
				out.WriteByte(c)
			}
			escape = false
		} else {
			switch c {
			case '\\':
				escape = true
			case '(':
				depth++
				out.WriteByte(c)
			case ')':
				depth--
				if depth == 0 {
					in = false
					out.WriteByte(' ')
				} else {
					out.WriteByte(c)
				}
			default:
				out.WriteByte(c)
			}
		}
		if out.Len() >= maxOut {
			break
		}
	}
	return out.String()
}

// normalizeSpace maps non-printable runes to spaces and collapses whitespace.
func normalizeSpace(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
