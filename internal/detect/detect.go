// Package detect locates card-shaped regions inside unconstrained
// frames.
//
// Two interchangeable strategies satisfy the same Detector contract: a
// geometric strategy built on classical binarization and contour
// geometry (always available), and a learned strategy that delegates to
// an external object-detection model (available in builds with the
// "onnx" tag). Both return an empty slice, never an error, for frames
// with no qualifying regions.
package detect

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"cardsight/internal/config"
)

// Region is one detected card-shaped area of a frame. It is valid only
// for the frame that produced it.
type Region struct {
	// Bounds is the axis-aligned bounding box in frame coordinates.
	Bounds image.Rectangle

	// Confidence is 1.0 for the geometric strategy (it is a filter, not
	// a probabilistic classifier) and the model score for the learned
	// strategy.
	Confidence float64
}

// Detector finds card-shaped regions in a frame. Implementations keep
// only regions with confidence at or above confThreshold and return
// an empty slice when nothing qualifies.
type Detector interface {
	Detect(frame image.Image, confThreshold float64) []Region
}

// New constructs the detector named by cfg.Strategy.
func New(cfg config.DetectorConfig, logger *zap.Logger) (Detector, error) {
	switch cfg.Strategy {
	case "geometric":
		return NewGeometric(cfg, logger), nil
	case "onnx":
		return NewONNX(cfg.ModelPath, logger)
	default:
		return nil, fmt.Errorf("unknown detector strategy %q", cfg.Strategy)
	}
}
