package scoring

import (
	"math"

	"ticketdraft/internal/tfidf"
)

// Score compares a drafted reply with a reference resolution and returns a
// percentage in [0,100]. The vocabulary is fitted on just these two texts.
// Texts that share no terms score 0.
func Score(candidate, reference string) float64 {
	_, vecs := tfidf.Fit([]string{reference, candidate})
	pct := tfidf.Cosine(vecs[1], vecs[0]) * 100
	return math.Max(0, math.Min(100, pct))
}

// Band buckets a score for operator display.
func Band(score float64) string {
	switch {
	case score >= 75:
		return "high"
	case score >= 50:
		return "medium"
	case score >= 25:
		return "low"
	default:
		return "very low"
	}
}
