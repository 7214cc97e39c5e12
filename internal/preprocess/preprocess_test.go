package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizer_Preprocess(t *testing.T) {
	n := NewNormalizer()

	t.Run("line endings", func(t *testing.T) {
		out, _ := n.Preprocess("a\r\nb\rc")
		assert.Equal(t, "a\nb\nc", out)
	})

	t.Run("collapses space runs including fullwidth", func(t *testing.T) {
		out, _ := n.Preprocess("投标人　　须知   事项")
		assert.Equal(t, "投标人 须知 事项", out)
	})

	t.Run("caps blank line runs", func(t *testing.T) {
		out, _ := n.Preprocess("第一章\n\n\n\n\n第二章")
		assert.Equal(t, "第一章\n\n第二章", out)
	})

	t.Run("strips control characters, keeps tabs", func(t *testing.T) {
		out, _ := n.Preprocess("a\x00b\x1fc\td")
		assert.Equal(t, "abc\td", out)
	})

	t.Run("trims trailing spaces and outer whitespace", func(t *testing.T) {
		out, _ := n.Preprocess("  line one   \nline two  \n\n")
		assert.Equal(t, "line one\nline two", out)
	})

	t.Run("metadata counts", func(t *testing.T) {
		out, meta := n.Preprocess("ab\r\ncd")
		assert.Equal(t, "ab\ncd", out)
		assert.Equal(t, 6, meta["original_chars"])
		assert.Equal(t, 5, meta["normalized_chars"])
		assert.Equal(t, 1, meta["removed_chars"])
	})
}
