package match

import (
	"image"
	"sort"

	"cardsight/internal/config"
	"cardsight/internal/feature"
	"cardsight/internal/index"
)

// Candidate is one ranked identification: a card identity with its
// similarity score in [0, 1]. Candidates are transient ranking output
// and are never persisted.
type Candidate struct {
	CardID string
	Score  float64
}

// Engine is the matching service shared by the batch and live
// controllers. It owns no controller state of its own; callers depend
// on it only through FindMatches/FindFeatureMatches.
//
// Engine is safe for concurrent use: the index is read-only and the
// extractor and scorer are stateless.
type Engine struct {
	idx          *index.Index
	extractor    *feature.Extractor
	scorer       Scorer
	displayCount int

	// Threshold is the classification threshold consumers compare the
	// top score against when deciding to present "undefined". Ranking
	// itself never drops candidates for being below it: rank and label
	// are distinct concerns.
	Threshold float64
}

// NewEngine builds the matching engine over a reference index.
func NewEngine(idx *index.Index, extractor *feature.Extractor, cfg config.MatcherConfig) *Engine {
	return &Engine{
		idx:          idx,
		extractor:    extractor,
		scorer:       Scorer{GoodDistance: cfg.GoodMatchDistance},
		displayCount: cfg.DisplayCount,
		Threshold:    cfg.ScoreThreshold,
	}
}

// Index exposes the engine's reference index for display lookups.
func (e *Engine) Index() *index.Index {
	return e.idx
}

// FindMatches extracts features from a query image and ranks every
// indexed card against it.
//
// The result is sorted by non-increasing score (card ID as tiebreak so
// equal scores rank deterministically) and truncated to the configured
// display count. An image with no extractable features, or an empty
// index, yields an empty list; both are valid outcomes, not errors.
func (e *Engine) FindMatches(img image.Image) []Candidate {
	return e.FindFeatureMatches(e.extractor.Extract(img))
}

// FindFeatureMatches ranks the index against already-extracted query
// features. The live pipeline uses this to extract once per region.
func (e *Engine) FindFeatureMatches(query *feature.FeatureSet) []Candidate {
	if query.Empty() || e.idx.Len() == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, e.idx.Len())
	for _, card := range e.idx.Cards() {
		candidates = append(candidates, Candidate{
			CardID: card.ID,
			Score:  e.scorer.Score(query, card.Features),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CardID < candidates[j].CardID
	})
	if len(candidates) > e.displayCount {
		candidates = candidates[:e.displayCount]
	}
	return candidates
}

// Extract exposes the engine's feature extractor so pipeline workers
// can reuse it on cropped regions.
func (e *Engine) Extract(img image.Image) *feature.FeatureSet {
	return e.extractor.Extract(img)
}
