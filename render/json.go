package render

import (
	"bytes"
	"encoding/json"

	"doc-search/search"
)

// JSON encodes result as an object keyed by document name in discovery order.
// The output has no trailing newline.
func JSON(result *search.SearchResult, indent bool) ([]byte, error) {
	if result == nil {
		result = search.NewSearchResult()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
