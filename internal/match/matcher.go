// Package match compares feature sets, scores cards, and ranks
// candidates for a query image.
package match

import (
	"sort"

	"cardsight/internal/feature"
)

// Pair is one accepted descriptor correspondence between a query and a
// reference FeatureSet.
type Pair struct {
	QueryIdx int
	RefIdx   int
	Distance int
}

// CrossCheck finds mutually-nearest descriptor pairs between two sets.
//
// For every query descriptor the nearest reference descriptor is found
// by Hamming distance, and vice versa; a pair is kept only when each
// side is the other's nearest neighbor. The cross-check materially cuts
// false positives compared to one-directional nearest neighbor.
//
// Nearest-neighbor ties break toward the lower index, and the result is
// sorted by ascending distance (query index as tiebreak), so the output
// is deterministic. Either side being empty yields an empty slice.
func CrossCheck(query, ref *feature.FeatureSet) []Pair {
	if query.Empty() || ref.Empty() {
		return nil
	}

	qBest := nearest(query.Descriptors, ref.Descriptors)
	rBest := nearest(ref.Descriptors, query.Descriptors)

	var pairs []Pair
	for qi, m := range qBest {
		if rBest[m.index].index == qi {
			pairs = append(pairs, Pair{QueryIdx: qi, RefIdx: m.index, Distance: m.distance})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Distance != pairs[j].Distance {
			return pairs[i].Distance < pairs[j].Distance
		}
		return pairs[i].QueryIdx < pairs[j].QueryIdx
	})
	return pairs
}

type neighbor struct {
	index    int
	distance int
}

// nearest returns, for each descriptor in from, its nearest neighbor in
// to. Brute force: set sizes are capped by the extractor's keypoint
// budget, so the quadratic scan stays small.
func nearest(from, to []feature.Descriptor) []neighbor {
	out := make([]neighbor, len(from))
	for i, d := range from {
		best := neighbor{index: -1, distance: feature.DescriptorBytes*8 + 1}
		for j, r := range to {
			if dist := d.Distance(r); dist < best.distance {
				best = neighbor{index: j, distance: dist}
			}
		}
		out[i] = best
	}
	return out
}
