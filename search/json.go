package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshal encodes v without escaping <, > and &, so context markers stay readable.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalJSON encodes an occurrence as [page, line, context].
func (m MatchOccurrence) MarshalJSON() ([]byte, error) {
	return marshal([]any{m.Page, m.Line, m.ContextText()})
}

// UnmarshalJSON decodes [page, line, context], recovering the matched line from its marker.
func (m *MatchOccurrence) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("occurrence: expected 3 elements, got %d", len(raw))
	}
	var page, line int
	var context string
	if err := json.Unmarshal(raw[0], &page); err != nil {
		return fmt.Errorf("occurrence page: %w", err)
	}
	if err := json.Unmarshal(raw[1], &line); err != nil {
		return fmt.Errorf("occurrence line: %w", err)
	}
	if err := json.Unmarshal(raw[2], &context); err != nil {
		return fmt.Errorf("occurrence context: %w", err)
	}

	*m = MatchOccurrence{Page: page, Line: line, Hits: 1}
	for i, l := range strings.Split(context, "\n") {
		switch {
		case strings.HasPrefix(l, MatchedLinePrefix):
			m.Matched = i
			l = strings.TrimPrefix(l, MatchedLinePrefix)
		case strings.HasPrefix(l, ContextLinePrefix):
			l = strings.TrimPrefix(l, ContextLinePrefix)
		}
		m.Context = append(m.Context, l)
	}
	return nil
}

// MarshalJSON encodes the result in its wire shape:
// null, {"skipped": reason}, {"error": description} or {term: [[page, line, context], ...]}.
func (d DocumentResult) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case KindNoMatches:
		return []byte("null"), nil
	case KindSkipped:
		return marshal(map[string]string{"skipped": d.Reason})
	case KindFailed:
		return marshal(map[string]string{"error": d.Reason})
	case KindMatches:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, t := range d.Terms {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshal(t.Term)
			if err != nil {
				return nil, err
			}
			occ := t.Occurrences
			if occ == nil {
				occ = []MatchOccurrence{}
			}
			val, err := marshal(occ)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown result kind %d", d.Kind)
	}
}

// UnmarshalJSON decodes any of the four wire shapes. A string value under
// "skipped" or "error" selects that variant; array values are term matches.
func (d *DocumentResult) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = NoMatchResult()
		return nil
	}
	keys, values, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}
	if len(keys) == 1 && (keys[0] == "skipped" || keys[0] == "error") {
		var reason string
		if json.Unmarshal(values[0], &reason) == nil {
			if keys[0] == "skipped" {
				*d = SkippedResult(reason)
			} else {
				*d = DocumentResult{Kind: KindFailed, Reason: reason}
			}
			return nil
		}
	}

	terms := make([]TermMatches, 0, len(keys))
	for i, k := range keys {
		var occ []MatchOccurrence
		if err := json.Unmarshal(values[i], &occ); err != nil {
			return fmt.Errorf("term %q: %w", k, err)
		}
		terms = append(terms, TermMatches{Term: k, Occurrences: occ})
	}
	*d = MatchesResult(terms)
	return nil
}

// MarshalJSON encodes the result as an object keyed by document name, in discovery order.
func (r *SearchResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := marshal(e.Result)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by document name, preserving key order.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	keys, values, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}
	out := NewSearchResult()
	for i, k := range keys {
		var doc DocumentResult
		if err := json.Unmarshal(values[i], &doc); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		out.set(k, doc)
	}
	*r = *out
	return nil
}

// decodeOrderedObject splits a JSON object into its keys and raw values in source order.
func decodeOrderedObject(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	var keys []string
	var values []json.RawMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %w", key, err)
		}
		keys = append(keys, key)
		values = append(values, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}
