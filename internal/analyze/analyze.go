// Package analyze holds the still-image controllers built on the
// matching engine: single-image identification and batch directory
// analysis. Both depend on the engine through its public contract only.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"cardsight/internal/imaging"
	"cardsight/internal/match"
)

// Result is the identification outcome for one query image.
type Result struct {
	// Path is the query image file.
	Path string

	// Candidates is the ranked candidate list; may be empty for images
	// with no extractable features or an empty index.
	Candidates []match.Candidate

	// Undefined is set when there is no candidate at or above the
	// classification threshold. The candidates are still reported;
	// rank and label are distinct concerns.
	Undefined bool
}

// TopID returns the identified card, or "" for undefined results.
func (r *Result) TopID() string {
	if r.Undefined || len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].CardID
}

// BatchController analyzes query images against the shared matching
// engine.
type BatchController struct {
	engine *match.Engine
	logger *zap.Logger
}

// NewBatchController builds a controller over the engine.
func NewBatchController(engine *match.Engine, logger *zap.Logger) *BatchController {
	return &BatchController{engine: engine, logger: logger}
}

// AnalyzeImage identifies a single query image. An unreadable file is
// fatal for this query and returns the error; an image with no
// detectable features yields an empty, undefined result.
func (b *BatchController) AnalyzeImage(path string) (*Result, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load query image: %w", err)
	}
	candidates := b.engine.FindMatches(img)
	res := &Result{Path: path, Candidates: candidates}
	res.Undefined = len(candidates) == 0 || candidates[0].Score < b.engine.Threshold
	return res, nil
}

// AnalyzeDir identifies every image file directly inside dir, in name
// order. Unreadable files are logged and skipped, never aborting the
// batch; a missing or unreadable directory is an error.
func (b *BatchController) AnalyzeDir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read query directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && imaging.IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		res, err := b.AnalyzeImage(path)
		if err != nil {
			b.logger.Warn("skipping unreadable query image",
				zap.String("path", path), zap.Error(err))
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}
