package retrieval

import (
	"sort"
	"strings"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// HeuristicRetriever ranks document segments by lexical similarity to the hint
// phrases. A segment containing a hint verbatim scores 1.0; otherwise the best
// bigram similarity across hints is used.
type HeuristicRetriever struct {
	limit        int
	segmentChars int
	minScore     float64
}

// Option configures a HeuristicRetriever.
type Option func(*HeuristicRetriever)

// WithLimit caps the number of returned candidates.
func WithLimit(n int) Option {
	return func(r *HeuristicRetriever) { r.limit = n }
}

// WithSegmentChars sets the maximum segment size in runes.
func WithSegmentChars(n int) Option {
	return func(r *HeuristicRetriever) { r.segmentChars = n }
}

// WithMinScore drops candidates scoring below the threshold.
func WithMinScore(s float64) Option {
	return func(r *HeuristicRetriever) { r.minScore = s }
}

// NewHeuristicRetriever builds a retriever with sane defaults.
func NewHeuristicRetriever(opts ...Option) *HeuristicRetriever {
	r := &HeuristicRetriever{limit: 5, segmentChars: 400, minScore: 0.12}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LocateCandidates implements schemas.Retriever.
func (r *HeuristicRetriever) LocateCandidates(text string, hints []string) []schemas.Segment {
	if strings.TrimSpace(text) == "" || len(hints) == 0 {
		return nil
	}

	segments := SplitSegments(text, r.segmentChars)
	scored := make([]schemas.Segment, 0, len(segments))
	for _, seg := range segments {
		score := r.score(seg.Text, hints)
		if score < r.minScore {
			continue
		}
		seg.Score = score
		scored = append(scored, seg)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if r.limit > 0 && len(scored) > r.limit {
		scored = scored[:r.limit]
	}
	return scored
}

func (r *HeuristicRetriever) score(segment string, hints []string) float64 {
	lowered := strings.ToLower(segment)
	var best float64
	for _, hint := range hints {
		if hint == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(hint)) {
			return 1
		}
		if s := DiceBigram(segment, hint); s > best {
			best = s
		}
	}
	return best
}
