package rules

import (
	"strings"
	"unicode/utf8"
)

// sentence-terminating characters used when expanding snippets.
const sentenceTerminators = ".。！!？?；;\n"

// Snippet extracts the context around a match. It takes a fixed window on each
// side of the match, then pulls the boundaries in to the nearest sentence
// terminator inside the window. When no terminator exists within the window the
// raw windowed slice is kept; the truncation is silent.
func Snippet(text string, start, length, window int) string {
	if text == "" {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}
	end := start + length
	if end > len(text) {
		end = len(text)
	}

	left := start - window
	if left < 0 {
		left = 0
	}
	right := end + window
	if right > len(text) {
		right = len(text)
	}

	// Window edges must not split a multi-byte rune.
	for left > 0 && !utf8.RuneStart(text[left]) {
		left--
	}
	for right < len(text) && !utf8.RuneStart(text[right]) {
		right++
	}

	// Left boundary: begin just after the last terminator before the match.
	if idx := strings.LastIndexAny(text[left:start], sentenceTerminators); idx >= 0 {
		_, size := utf8.DecodeRuneInString(text[left+idx:])
		left += idx + size
	}

	// Right boundary: end just after the first terminator past the match.
	if idx := strings.IndexAny(text[end:right], sentenceTerminators); idx >= 0 {
		_, size := utf8.DecodeRuneInString(text[end+idx:])
		right = end + idx + size
	}

	return strings.TrimSpace(text[left:right])
}
