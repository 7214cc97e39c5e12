package retrieval

import "strings"

// DiceBigram computes the Sørensen–Dice coefficient over character bigrams of
// the two strings, case-folded. It is the crude text-similarity heuristic used
// when no model backend is available; scores are in [0,1].
func DiceBigram(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b && a != "" {
		return 1
	}

	ba, totalA := bigrams(a)
	bb, totalB := bigrams(b)
	if totalA == 0 || totalB == 0 {
		return 0
	}

	var overlap int
	for bg, n := range ba {
		if m, ok := bb[bg]; ok {
			if m < n {
				overlap += m
			} else {
				overlap += n
			}
		}
	}
	return 2 * float64(overlap) / float64(totalA+totalB)
}

func bigrams(s string) (map[string]int, int) {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil, 0
	}
	out := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		out[string(runes[i:i+2])]++
	}
	return out, len(runes) - 1
}
