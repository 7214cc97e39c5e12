// Package retrieval locates candidate text spans relevant to hint phrases.
package retrieval

import (
	"strings"
	"unicode/utf8"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// SplitSegments chunks a document into paragraph-aligned segments of at most
// maxChars runes. Offsets are byte offsets into the original text so segments
// can be sliced back out of it.
func SplitSegments(text string, maxChars int) []schemas.Segment {
	if maxChars <= 0 {
		maxChars = 400
	}
	var segments []schemas.Segment

	offset := 0
	flushStart := -1
	var buf strings.Builder

	flush := func() {
		if flushStart < 0 {
			return
		}
		chunk := strings.TrimSpace(buf.String())
		if chunk != "" {
			segments = append(segments, schemas.Segment{
				Start:  flushStart,
				Length: buf.Len(),
				Text:   chunk,
			})
		}
		buf.Reset()
		flushStart = -1
	}

	for _, para := range strings.Split(text, "\n") {
		paraStart := offset
		offset += len(para) + 1 // trailing newline

		if strings.TrimSpace(para) == "" {
			flush()
			continue
		}
		if flushStart < 0 {
			flushStart = paraStart
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(para)

		if utf8.RuneCountInString(buf.String()) >= maxChars {
			flush()
		}
	}
	flush()

	return segments
}
