package match

import (
	"testing"

	"cardsight/internal/feature"
)

// desc builds a descriptor with the given bytes set at the start; the
// rest stays zero.
func desc(prefix ...byte) feature.Descriptor {
	var d feature.Descriptor
	copy(d[:], prefix)
	return d
}

func setOf(descs ...feature.Descriptor) *feature.FeatureSet {
	fs := &feature.FeatureSet{}
	for _, d := range descs {
		fs.Keypoints = append(fs.Keypoints, feature.Keypoint{})
		fs.Descriptors = append(fs.Descriptors, d)
	}
	return fs
}

func TestCrossCheckMutual(t *testing.T) {
	a := desc(0xFF, 0xFF, 0xFF, 0xFF)
	b := desc(0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF)

	// Reference holds the same descriptors in reverse order; both pairs
	// are mutual nearest neighbors at distance 0.
	pairs := CrossCheck(setOf(a, b), setOf(b, a))

	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	for _, p := range pairs {
		if p.Distance != 0 {
			t.Errorf("pair %+v: distance %d, want 0", p, p.Distance)
		}
	}
	if pairs[0].QueryIdx != 0 || pairs[0].RefIdx != 1 {
		t.Errorf("first pair %+v, want query 0 -> ref 1", pairs[0])
	}
	if pairs[1].QueryIdx != 1 || pairs[1].RefIdx != 0 {
		t.Errorf("second pair %+v, want query 1 -> ref 0", pairs[1])
	}
}

func TestCrossCheckRejectsNonMutual(t *testing.T) {
	a := desc(0xFF, 0xFF, 0xFF, 0xFF)
	// aNear is one bit away from a; both query descriptors point at the
	// same reference, so only the closer one survives.
	aNear := desc(0xFE, 0xFF, 0xFF, 0xFF)

	pairs := CrossCheck(setOf(a, aNear), setOf(a))

	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].QueryIdx != 0 || pairs[0].Distance != 0 {
		t.Errorf("got %+v, want query 0 at distance 0", pairs[0])
	}
}

func TestCrossCheckEmptySides(t *testing.T) {
	full := setOf(desc(0xFF))
	empty := &feature.FeatureSet{}

	if pairs := CrossCheck(empty, full); len(pairs) != 0 {
		t.Errorf("empty query: got %d pairs, want 0", len(pairs))
	}
	if pairs := CrossCheck(full, empty); len(pairs) != 0 {
		t.Errorf("empty reference: got %d pairs, want 0", len(pairs))
	}
	if pairs := CrossCheck(nil, full); len(pairs) != 0 {
		t.Errorf("nil query: got %d pairs, want 0", len(pairs))
	}
}

func TestCrossCheckSortedByDistance(t *testing.T) {
	a := desc(0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
	b := desc(0x0F)
	aFar := desc(0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00) // 8 bits from a
	bSame := b

	pairs := CrossCheck(setOf(aFar, bSame), setOf(a, b))
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Distance > pairs[1].Distance {
		t.Errorf("pairs not sorted by distance: %d then %d",
			pairs[0].Distance, pairs[1].Distance)
	}
}

func TestScorerRatio(t *testing.T) {
	s := Scorer{GoodDistance: 45}

	tests := []struct {
		name  string
		pairs []Pair
		want  float64
	}{
		{"no pairs", nil, 0},
		{"all good", []Pair{{Distance: 0}, {Distance: 44}}, 1},
		{"none good", []Pair{{Distance: 45}, {Distance: 200}}, 0},
		{"mixed", []Pair{{Distance: 10}, {Distance: 44}, {Distance: 100}}, 2.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ScorePairs(tt.pairs); got != tt.want {
				t.Errorf("ScorePairs: got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScoreEmptySets(t *testing.T) {
	s := Scorer{GoodDistance: 45}
	if got := s.Score(&feature.FeatureSet{}, setOf(desc(0xFF))); got != 0 {
		t.Errorf("empty query: score %f, want 0", got)
	}
}

func TestScoreSelf(t *testing.T) {
	s := Scorer{GoodDistance: 45}
	fs := setOf(desc(0xFF), desc(0x0F, 0xF0), desc(0xAA, 0xAA, 0xAA))
	if got := s.Score(fs, fs); got != 1 {
		t.Errorf("self score: got %f, want 1", got)
	}
}
