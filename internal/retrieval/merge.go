package retrieval

import (
	"sort"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// MultiRetriever combines several retriever strategies into one ranked result.
// Candidates with the same start offset are deduplicated, keeping the highest
// score.
type MultiRetriever struct {
	retrievers []schemas.Retriever
}

// Merge wires retrievers together. With a single retriever it is returned
// as-is; with none, a retriever that always yields nothing.
func Merge(retrievers ...schemas.Retriever) schemas.Retriever {
	if len(retrievers) == 1 {
		return retrievers[0]
	}
	return &MultiRetriever{retrievers: retrievers}
}

// LocateCandidates implements schemas.Retriever.
func (m *MultiRetriever) LocateCandidates(text string, hints []string) []schemas.Segment {
	byStart := make(map[int]schemas.Segment)
	for _, r := range m.retrievers {
		for _, seg := range r.LocateCandidates(text, hints) {
			if prev, ok := byStart[seg.Start]; !ok || seg.Score > prev.Score {
				byStart[seg.Start] = seg
			}
		}
	}

	merged := make([]schemas.Segment, 0, len(byStart))
	for _, seg := range byStart {
		merged = append(merged, seg)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Start < merged[j].Start
	})
	return merged
}
