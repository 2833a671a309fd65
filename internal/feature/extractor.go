package feature

import (
	"image"
	"math"
	"sort"

	dimaging "github.com/disintegration/imaging"

	"cardsight/internal/config"
	cimaging "cardsight/internal/imaging"
)

// borderMargin keeps keypoints far enough from the image border that
// the rotated sampling pattern never leaves the image
// (patchRadius * sqrt2, rounded up, plus one for rounding).
const borderMargin = 23

// Extractor computes FeatureSets from images.
//
// An Extractor is immutable after construction and safe for concurrent
// use: extraction touches no shared mutable state.
type Extractor struct {
	maxKeypoints int
	threshold    int
	levels       int
	scale        float64
}

// NewExtractor builds an Extractor from configuration. Zero values are
// not expected here; config.ApplyDefaults fills them in.
func NewExtractor(cfg config.ExtractorConfig) *Extractor {
	return &Extractor{
		maxKeypoints: cfg.MaxKeypoints,
		threshold:    cfg.FASTThreshold,
		levels:       cfg.PyramidLevels,
		scale:        cfg.PyramidScale,
	}
}

// Extract computes the FeatureSet of an image.
//
// Color images are normalized to a single intensity channel before
// detection. Corners are detected on every level of a small image
// pyramid, oriented by intensity centroid, and described with the
// steered binary pattern; results are ranked by response and capped at
// the configured keypoint budget.
//
// Blank, uniform, or degenerate-size images return an empty FeatureSet,
// never an error. For a fixed input the output is identical across
// calls, including ordering.
func (e *Extractor) Extract(img image.Image) *FeatureSet {
	fs := &FeatureSet{}
	if img == nil {
		return fs
	}
	gray := cimaging.ToGray(img)

	for level := 0; level < e.levels; level++ {
		factor := math.Pow(e.scale, float64(level))
		levelGray := gray
		if level > 0 {
			w := int(float64(gray.Bounds().Dx()) / factor)
			h := int(float64(gray.Bounds().Dy()) / factor)
			if w <= 2*borderMargin || h <= 2*borderMargin {
				break
			}
			levelGray = cimaging.ToGray(dimaging.Resize(gray, w, h, dimaging.Linear))
		}

		corners := detectCorners(levelGray, e.threshold, borderMargin)
		if len(corners) == 0 {
			continue
		}
		smoothed := smoothForSampling(levelGray)
		for _, c := range corners {
			fs.Keypoints = append(fs.Keypoints, Keypoint{
				X:        float64(c.x) * factor,
				Y:        float64(c.y) * factor,
				Scale:    factor,
				Angle:    c.angle,
				Response: c.score,
			})
			fs.Descriptors = append(fs.Descriptors, describe(smoothed, c.x, c.y, c.angle))
		}
	}

	e.rankAndCap(fs)
	return fs
}

// rankAndCap orders keypoints by descending response and keeps the
// strongest maxKeypoints. Ties break on Y, X, then Scale so that the
// order is a pure function of the input image.
func (e *Extractor) rankAndCap(fs *FeatureSet) {
	idx := make([]int, len(fs.Keypoints))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := fs.Keypoints[idx[a]], fs.Keypoints[idx[b]]
		if ka.Response != kb.Response {
			return ka.Response > kb.Response
		}
		if ka.Y != kb.Y {
			return ka.Y < kb.Y
		}
		if ka.X != kb.X {
			return ka.X < kb.X
		}
		return ka.Scale < kb.Scale
	})
	if len(idx) > e.maxKeypoints {
		idx = idx[:e.maxKeypoints]
	}

	kps := make([]Keypoint, len(idx))
	descs := make([]Descriptor, len(idx))
	for i, j := range idx {
		kps[i] = fs.Keypoints[j]
		descs[i] = fs.Descriptors[j]
	}
	fs.Keypoints = kps
	fs.Descriptors = descs
}
