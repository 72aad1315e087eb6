package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	reg := NewExtractorRegistry()

	_, ok := reg.GetExtractor(".PDF")
	assert.True(t, ok)
	_, ok = reg.GetExtractor("docx")
	assert.True(t, ok)
	assert.True(t, reg.Supports("Report.TXT"))
	assert.False(t, reg.Supports("notes.md"))
	assert.Equal(t, []string{"docx", "pdf", "txt"}, reg.Extensions())

	reg.RegisterExtended()
	assert.True(t, reg.Supports("notes.md"))
	assert.True(t, reg.Supports("inbox.mbox"))
}

func TestRegistryExtractUnsupported(t *testing.T) {
	_, err := NewExtractorRegistry().Extract("archive.xyz")

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "archive.xyz", extErr.Path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTextExtractor(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "alpha\nbeta", "alpha\nbeta"},
		{"crlf", "alpha\r\nbeta\rgamma", "alpha\nbeta\ngamma"},
		{"utf8 bom", "\xef\xbb\xbfalpha", "alpha"},
		{"utf16le bom", "\xff\xfea\x00\r\x00\n\x00b\x00", "a\nb"},
		{"invalid utf8", "a\xffb", "a\uFFFDb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".txt", tt.content)
			got, err := (&TextExtractor{}).Extract(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, 1, got.Pages)
		})
	}
}

func TestTextExtractorMissingFile(t *testing.T) {
	_, err := (&TextExtractor{}).Extract(t.TempDir() + "/missing.txt")

	var extErr *ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestDOCXExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeDOCX(t, dir, "memo.docx", "First paragraph", "", "Third &amp; last")

	got, err := (&DOCXExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\n\nThird & last", got.Text)
}

func TestDOCXExtractorTabsAndBreaks(t *testing.T) {
	dir := t.TempDir()
	doc := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`</w:body></w:document>`
	path := writeZip(t, dir, "tabs.docx", map[string]string{"word/document.xml": doc})

	got, err := (&DOCXExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\nc\ncell", got.Text)
}

func TestDOCXExtractorFailures(t *testing.T) {
	dir := t.TempDir()
	notZip := writeFile(t, dir, "broken.docx", "this is not a zip archive")
	noBody := writeZip(t, dir, "empty.docx", map[string]string{"docProps/app.xml": "<x/>"})
	badXML := writeZip(t, dir, "bad.docx", map[string]string{"word/document.xml": "<w:document><unclosed>"})

	for _, path := range []string{notZip, noBody, badXML} {
		_, err := (&DOCXExtractor{}).Extract(path)
		var extErr *ExtractionError
		assert.ErrorAs(t, err, &extErr, path)
	}
}

func TestPDFExtractorPages(t *testing.T) {
	path := writePDF(t, t.TempDir(), "report.pdf",
		[]string{"Alpha report", "budget overview"},
		nil,
		[]string{"closing budget figures", "final remarks"},
	)

	got, err := (&PDFExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, "\nAlpha report\nbudget overview\n\n\nclosing budget figures\nfinal remarks", got.Text)

	res := SearchText(got, NewSearchRequest("budget"))
	require.Equal(t, KindMatches, res.Kind)
	occ := res.Occurrences("budget")
	require.Len(t, occ, 2)
	assert.Equal(t, 1, occ[0].Page)
	assert.Equal(t, 3, occ[0].Line)
	assert.Equal(t, "closing budget figures", occ[1].MatchedText())
	assert.Equal(t, 3, occ[1].Page)
	assert.Equal(t, 6, occ[1].Line)
}

func TestPDFExtractorInvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.pdf", "definitely not a pdf")

	_, err := (&PDFExtractor{}).Extract(path)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, err.Error(), "fallback")
}

func TestHTMLExtractor(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.html",
		`<html><head><title>Ignored</title><style>p{}</style></head>`+
			`<body><h1>Heading</h1><p>Hello <b>world</b></p><script>run()</script><div>  spaced   out  </div></body></html>`)

	got, err := (&HTMLExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Heading\nHello world\nspaced out", got.Text)
}

func TestEMLExtractor(t *testing.T) {
	path := writeFile(t, t.TempDir(), "note.eml",
		"From: alice@example.com\r\nTo: bob@example.com\r\nSubject: Quarterly report\r\n"+
			"Content-Type: text/plain; charset=utf-8\r\n\r\nRevenue grew\r\nin March\r\n")

	got, err := (&EMLExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "Subject: Quarterly report\n")
	assert.Contains(t, got.Text, "Revenue grew\nin March")
	assert.NotContains(t, got.Text, "\r")
}

func TestEMLExtractorHTMLOnlyBody(t *testing.T) {
	path := writeFile(t, t.TempDir(), "html.eml",
		"From: alice@example.com\r\nSubject: Styled\r\n"+
			"Content-Type: text/html; charset=utf-8\r\n\r\n<p>Visible paragraph</p>\r\n")

	got, err := (&EMLExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "Subject: Styled")
	assert.Contains(t, got.Text, "Visible")
}

func TestMBOXExtractor(t *testing.T) {
	path := writeFile(t, t.TempDir(), "inbox.mbox",
		"From alice@example.com Mon Jan  1 00:00:00 2024\n"+
			"Subject: first\n\nopening message\n\n"+
			"From bob@example.com Tue Jan  2 00:00:00 2024\n"+
			"Subject: second\n\nclosing message\n")

	got, err := (&MBOXExtractor{}).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, got.Text, "Subject: first")
	assert.Contains(t, got.Text, "opening message")
	assert.Contains(t, got.Text, "\n---\n")
	assert.Contains(t, got.Text, "closing message")
}

func TestMSGExtractorInvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.msg", "not a compound file")

	_, err := (&MSGExtractor{}).Extract(path)

	var extErr *ExtractionError
	assert.True(t, errors.As(err, &extErr))
}

func TestDecodeUTF16LE(t *testing.T) {
	got, err := decodeUTF16LE([]byte("h\x00i\x00\x00\x00"))
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}
