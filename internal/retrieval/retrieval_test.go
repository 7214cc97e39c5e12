package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/change8/BiddingAssistant/api/schemas"
)

func TestSplitSegments_ParagraphAlignment(t *testing.T) {
	text := "第一段内容。\n\n第二段内容，较长一些。\n\n第三段。"
	segs := SplitSegments(text, 400)

	require.Len(t, segs, 3)
	assert.Equal(t, "第一段内容。", segs[0].Text)
	assert.Equal(t, 0, segs[0].Start)
	// Offsets must point back into the original document.
	assert.True(t, strings.HasPrefix(text[segs[1].Start:], "第二段"))
	assert.True(t, strings.HasPrefix(text[segs[2].Start:], "第三段"))
}

func TestSplitSegments_MaxChars(t *testing.T) {
	long := strings.Repeat("条款内容很长。", 100) // 700 runes
	segs := SplitSegments(long+"\n"+long, 400)
	assert.GreaterOrEqual(t, len(segs), 2)
}

func TestSplitSegments_EmptyText(t *testing.T) {
	assert.Empty(t, SplitSegments("", 400))
	assert.Empty(t, SplitSegments("\n\n\n", 400))
}

func TestDiceBigram(t *testing.T) {
	assert.Equal(t, 1.0, DiceBigram("安全生产许可证", "安全生产许可证"))
	assert.Equal(t, 0.0, DiceBigram("abcd", "wxyz"))
	assert.Equal(t, 0.0, DiceBigram("", "abc"))

	partial := DiceBigram("安全生产许可证有效", "安全生产许可证")
	assert.Greater(t, partial, 0.5)
	assert.Less(t, partial, 1.0)
}

func TestHeuristicRetriever_VerbatimHintWins(t *testing.T) {
	text := "投标人须知。\n\n投标人应具备安全生产许可证，且在有效期内。\n\n其他无关段落，讲的是别的事情。"
	r := NewHeuristicRetriever(WithLimit(2))

	segs := r.LocateCandidates(text, []string{"安全生产许可证"})
	require.NotEmpty(t, segs)
	assert.Equal(t, 1.0, segs[0].Score)
	assert.Contains(t, segs[0].Text, "安全生产许可证")
}

func TestHeuristicRetriever_EmptyInputs(t *testing.T) {
	r := NewHeuristicRetriever()
	assert.Nil(t, r.LocateCandidates("", []string{"hint"}))
	assert.Nil(t, r.LocateCandidates("some text", nil))
}

func TestHeuristicRetriever_LimitAndThreshold(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("资质要求：营业执照、安全生产许可证。\n\n")
	}
	r := NewHeuristicRetriever(WithLimit(3), WithMinScore(0.5))

	segs := r.LocateCandidates(b.String(), []string{"安全生产许可证"})
	assert.Len(t, segs, 3)
}

type fixedRetriever struct {
	segments []schemas.Segment
}

func (f *fixedRetriever) LocateCandidates(string, []string) []schemas.Segment {
	return f.segments
}

func TestMerge_DeduplicatesByStart(t *testing.T) {
	a := &fixedRetriever{segments: []schemas.Segment{
		{Start: 0, Length: 5, Text: "alpha", Score: 0.4},
		{Start: 10, Length: 5, Text: "beta", Score: 0.9},
	}}
	b := &fixedRetriever{segments: []schemas.Segment{
		{Start: 0, Length: 5, Text: "alpha", Score: 0.7},
	}}

	merged := Merge(a, b).LocateCandidates("irrelevant", []string{"x"})
	require.Len(t, merged, 2)
	assert.Equal(t, 10, merged[0].Start) // highest score first
	assert.Equal(t, 0.7, merged[1].Score)
}

func TestMerge_SingleRetrieverPassthrough(t *testing.T) {
	a := &fixedRetriever{}
	assert.Equal(t, schemas.Retriever(a), Merge(a))
}
