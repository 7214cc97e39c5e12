// Package extract turns uploaded files into plain text for analysis.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned when no extractor recognizes the upload.
var ErrUnsupportedFormat = errors.New("unsupported document format")

var textExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".text": {},
	".log":  {},
}

// PlainText reads text-format uploads directly. Formats that need real
// parsing (pdf, docx) are rejected with ErrUnsupportedFormat so the caller
// can fail the job with a usable message.
type PlainText struct{}

// NewPlainText returns the plain-text extractor.
func NewPlainText() *PlainText { return &PlainText{} }

// Extract implements schemas.Extractor.
func (e *PlainText) Extract(path, filename, contentType string) (string, map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := textExtensions[ext]; !ok && !strings.HasPrefix(contentType, "text/") {
		return "", nil, fmt.Errorf("%w: %q (content type %q)", ErrUnsupportedFormat, filename, contentType)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", nil, fmt.Errorf("%w: %q is not valid UTF-8 text", ErrUnsupportedFormat, filename)
	}

	text := string(raw)
	meta := map[string]any{
		"extractor": "plain_text",
		"extension": ext,
		"bytes":     len(raw),
	}
	return text, meta, nil
}
