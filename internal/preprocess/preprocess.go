// Package preprocess normalizes raw document text before analysis.
package preprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	spaceRunRE   = regexp.MustCompile(`[ \t\x{3000}]+`)
	newlineRunRE = regexp.MustCompile(`\n{3,}`)
)

// Normalizer cleans up extraction artifacts: carriage returns, control
// characters, runs of spaces and excessive blank lines. It reports what it
// changed so the caller can store the counts alongside the job.
type Normalizer struct{}

// NewNormalizer returns the default text normalizer.
func NewNormalizer() *Normalizer { return &Normalizer{} }

// Preprocess implements schemas.Preprocessor.
func (n *Normalizer) Preprocess(text string) (string, map[string]any) {
	originalLen := utf8.RuneCountInString(text)

	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")

	cleaned = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, cleaned)

	cleaned = spaceRunRE.ReplaceAllString(cleaned, " ")
	cleaned = newlineRunRE.ReplaceAllString(cleaned, "\n\n")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	cleaned = strings.TrimSpace(strings.Join(lines, "\n"))

	meta := map[string]any{
		"original_chars":   originalLen,
		"normalized_chars": utf8.RuneCountInString(cleaned),
		"removed_chars":    originalLen - utf8.RuneCountInString(cleaned),
	}
	return cleaned, meta
}
