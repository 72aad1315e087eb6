package search

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"
	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"
)

// EMLExtractor extracts text from .eml files (MIME messages).
type EMLExtractor struct{}

// Extract implements the Extractor interface for EML files.
func (e *EMLExtractor) Extract(path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	text, err := messageText(f)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	return Extraction{Text: text, Pages: 1}, nil
}

// messageText renders one MIME message as a Subject line followed by the body.
// Plain text is preferred; an HTML-only body is flattened.
func messageText(r io.Reader) (string, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return "", fmt.Errorf("parse message: %w", err)
	}

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body, err = htmlText(strings.NewReader(env.HTML))
		if err != nil {
			return "", err
		}
	}

	var b strings.Builder
	if subject := env.GetHeader("Subject"); subject != "" {
		b.WriteString("Subject: ")
		b.WriteString(subject)
		b.WriteByte('\n')
	}
	b.WriteString(normalizeNewlines(body))
	return b.String(), nil
}

// MBOXExtractor extracts text from .mbox files (collections of MIME messages).
type MBOXExtractor struct{}

const mboxSeparator = "---"

// Extract implements the Extractor interface for MBOX files. Messages are
// separated by a "---" line; messages that fail to parse are skipped.
func (e *MBOXExtractor) Extract(path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	reader := mbox.NewReader(f)
	var parts []string
	for {
		msg, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(parts) == 0 {
				return Extraction{}, &ExtractionError{Path: path, Err: err}
			}
			break
		}
		text, err := messageText(msg)
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}
	return Extraction{Text: strings.Join(parts, "\n"+mboxSeparator+"\n"), Pages: 1}, nil
}

// MSGExtractor extracts the subject and body properties from Outlook .msg
// files (compound file binary format).
type MSGExtractor struct{}

// MAPI property streams: __substg1.0_<tag><type>.
const (
	msgStreamPrefix = "__substg1.0_"
	msgTagSubject   = "0037"
	msgTagBody      = "1000"
	msgTypeUnicode  = "001F"
	msgTypeString8  = "001E"
)

// Extract implements the Extractor interface for MSG files.
func (e *MSGExtractor) Extract(path string) (Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return Extraction{}, &ExtractionError{Path: path, Err: err}
	}

	props := make(map[string]string)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		name := entry.Name
		if !strings.HasPrefix(name, msgStreamPrefix) || len(name) != len(msgStreamPrefix)+8 {
			continue
		}
		tag, typ := name[len(msgStreamPrefix):len(msgStreamPrefix)+4], name[len(msgStreamPrefix)+4:]
		if tag != msgTagSubject && tag != msgTagBody {
			continue
		}
		if _, seen := props[tag]; seen {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			continue
		}
		switch typ {
		case msgTypeUnicode:
			if s, err := decodeUTF16LE(data); err == nil {
				props[tag] = s
			}
		case msgTypeString8:
			props[tag] = string(bytes.TrimRight(data, "\x00"))
		}
	}

	if len(props) == 0 {
		return Extraction{}, &ExtractionError{Path: path, Err: errors.New("no subject or body property found")}
	}

	var b strings.Builder
	if subject := props[msgTagSubject]; subject != "" {
		b.WriteString("Subject: ")
		b.WriteString(subject)
		b.WriteByte('\n')
	}
	b.WriteString(normalizeNewlines(props[msgTagBody]))
	return Extraction{Text: b.String(), Pages: 1}, nil
}

func decodeUTF16LE(data []byte) (string, error) {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\x00"), nil
}
