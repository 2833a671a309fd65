package match

import "cardsight/internal/feature"

// Scorer turns cross-checked matches into a similarity score.
//
// The scoring policy is the good-match ratio: the fraction of accepted
// pairs whose Hamming distance falls below GoodDistance. The score
// range is [0, 1]; no matches at all score 0, never negative. The
// policy is monotonic: replacing a weak pair with a stronger one never
// lowers the score.
//
// A distance-penalty policy (100 minus the mean distance of the top K
// pairs, floored at 0) exists in this system's history with its own
// incompatible thresholds. The two are not interchangeable; this
// implementation commits to the ratio policy and to thresholds stated
// on its [0, 1] scale.
type Scorer struct {
	// GoodDistance is the Hamming distance below which a pair counts as
	// a good match.
	GoodDistance int
}

// Score compares a query FeatureSet against one reference FeatureSet.
//
// Either side being empty yields 0. The score is
// (pairs with distance < GoodDistance) / (all cross-checked pairs).
func (s Scorer) Score(query, ref *feature.FeatureSet) float64 {
	return s.ScorePairs(CrossCheck(query, ref))
}

// ScorePairs applies the ratio policy to an already-computed pair list.
func (s Scorer) ScorePairs(pairs []Pair) float64 {
	if len(pairs) == 0 {
		return 0
	}
	good := 0
	for _, p := range pairs {
		if p.Distance < s.GoodDistance {
			good++
		}
	}
	return float64(good) / float64(len(pairs))
}
