package detect

import (
	"image"
	"math"
	"sort"

	"go.uber.org/zap"

	"cardsight/internal/config"
	"cardsight/internal/imaging"
)

// Binarization constants, matched to the adaptive-threshold and closing
// parameters the detection pipeline was tuned with: an 11x11 local mean
// window with offset 2, and a 5x5 closing kernel.
const (
	adaptiveWindow = 11
	adaptiveOffset = 2
	closingKernel  = 5
	blurRadius     = 2.0
)

// Geometric detects card-shaped regions with classical image
// processing: grayscale, blur, adaptive thresholding, morphological
// closing, external-contour extraction, and area/aspect filtering of
// each contour's minimum-area rotated rectangle.
//
// It is stateless apart from its configuration and safe for concurrent
// use.
type Geometric struct {
	minArea   float64
	maxArea   float64
	minAspect float64
	maxAspect float64
	logger    *zap.Logger
}

// NewGeometric builds the geometric strategy from configuration.
func NewGeometric(cfg config.DetectorConfig, logger *zap.Logger) *Geometric {
	return &Geometric{
		minArea:   cfg.MinArea,
		maxArea:   cfg.MaxArea,
		minAspect: cfg.MinAspect,
		maxAspect: cfg.MaxAspect,
		logger:    logger,
	}
}

// Detect returns the card-shaped regions of a frame.
//
// Pipeline: grayscale → Gaussian blur (noise suppression) → adaptive
// local thresholding → 5x5 morphological closing (bridges broken edges)
// → connected foreground components. Each component is accepted when
// its pixel area lies in [MinArea, MaxArea] and the short/long side
// ratio of its minimum-area rotated rectangle lies in
// [MinAspect, MaxAspect]; cards occupy a known, narrow aspect band.
//
// Accepted regions carry the axis-aligned bounding box of the rotated
// rectangle and a fixed confidence of 1.0; confThreshold is part of the
// Detector contract but cannot reject anything here. Frames with no
// qualifying component (low contrast, out-of-range sizes, empty scenes)
// yield an empty slice, never an error.
func (g *Geometric) Detect(frame image.Image, confThreshold float64) []Region {
	_ = confThreshold
	gray := imaging.ToGray(frame)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if w < adaptiveWindow || h < adaptiveWindow {
		return nil
	}

	blurred := imaging.BlurGray(gray, blurRadius)
	binary := adaptiveThreshold(blurred, adaptiveWindow, adaptiveOffset)
	closed := closeBinary(binary, w, h, closingKernel)
	components := findComponents(closed, w, h, int(g.minArea))

	var regions []Region
	for _, comp := range components {
		area := float64(comp.size)
		if area < g.minArea || area > g.maxArea {
			continue
		}
		rect := minAreaRect(comp.hullPoints())
		long := math.Max(rect.w, rect.h)
		if long == 0 {
			continue
		}
		aspect := math.Min(rect.w, rect.h) / long
		if aspect < g.minAspect || aspect > g.maxAspect {
			continue
		}
		bounds := rect.axisAlignedBounds().Intersect(image.Rect(0, 0, w, h))
		if bounds.Empty() {
			continue
		}
		regions = append(regions, Region{Bounds: bounds, Confidence: 1.0})
	}

	// Largest first; position as tiebreak keeps the order stable.
	sort.SliceStable(regions, func(i, j int) bool {
		ai := regions[i].Bounds.Dx() * regions[i].Bounds.Dy()
		aj := regions[j].Bounds.Dx() * regions[j].Bounds.Dy()
		if ai != aj {
			return ai > aj
		}
		if regions[i].Bounds.Min.Y != regions[j].Bounds.Min.Y {
			return regions[i].Bounds.Min.Y < regions[j].Bounds.Min.Y
		}
		return regions[i].Bounds.Min.X < regions[j].Bounds.Min.X
	})

	if g.logger != nil {
		g.logger.Debug("geometric detection",
			zap.Int("components", len(components)),
			zap.Int("regions", len(regions)))
	}
	return regions
}

// adaptiveThreshold binarizes against the local mean: a pixel is
// foreground when it is not darker than its 11x11 neighborhood mean by
// more than the offset. Uniform areas therefore come out foreground and
// the dark side of every edge comes out background, which is what
// separates a card's interior from the surrounding surface.
func adaptiveThreshold(gray *image.Gray, window, offset int) []bool {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()

	// Summed-area table with one extra row/column of zeros.
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		src := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			rowSum += int64(src[x])
			integral[(y+1)*(w+1)+(x+1)] = integral[y*(w+1)+(x+1)] + rowSum
		}
	}

	half := window / 2
	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		y1 := maxInt(y-half, 0)
		y2 := minInt(y+half, h-1)
		for x := 0; x < w; x++ {
			x1 := maxInt(x-half, 0)
			x2 := minInt(x+half, w-1)
			count := int64((x2 - x1 + 1) * (y2 - y1 + 1))
			sum := integral[(y2+1)*(w+1)+(x2+1)] -
				integral[y1*(w+1)+(x2+1)] -
				integral[(y2+1)*(w+1)+x1] +
				integral[y1*(w+1)+x1]
			mean := sum / count
			v := int64(gray.Pix[y*gray.Stride+x])
			out[y*w+x] = v > mean-int64(offset)
		}
	}
	return out
}

// closeBinary performs morphological closing (dilate, then erode) with
// a square kernel, implemented as separable horizontal/vertical passes.
func closeBinary(src []bool, w, h, kernel int) []bool {
	half := kernel / 2
	dilated := separablePass(src, w, h, half, true)
	return separablePass(dilated, w, h, half, false)
}

// separablePass runs a horizontal then a vertical sliding-window pass.
// dilate=true keeps a pixel when any window pixel is set; dilate=false
// (erosion) keeps it when all are set.
func separablePass(src []bool, w, h, half int, dilate bool) []bool {
	tmp := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := !dilate
			for dx := -half; dx <= half; dx++ {
				xx := clampInt(x+dx, 0, w-1)
				if dilate && src[y*w+xx] {
					v = true
					break
				}
				if !dilate && !src[y*w+xx] {
					v = false
					break
				}
			}
			tmp[y*w+x] = v
		}
	}
	out := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := !dilate
			for dy := -half; dy <= half; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				if dilate && tmp[yy*w+x] {
					v = true
					break
				}
				if !dilate && !tmp[yy*w+x] {
					v = false
					break
				}
			}
			out[y*w+x] = v
		}
	}
	return out
}

// component is one external connected foreground region. Only the
// per-row horizontal extremes are retained: they are a superset of the
// convex hull's support points and keep the hull computation cheap.
type component struct {
	size     int
	minY     int
	rowMinX  []int // indexed by y - minY
	rowMaxX  []int
}

// findComponents labels 8-connected foreground components with an
// iterative flood fill. Components smaller than minSize pixels are
// discarded as noise before any geometry is computed.
func findComponents(binary []bool, w, h, minSize int) []*component {
	visited := make([]bool, w*h)
	var components []*component

	var stack []image.Point
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if !binary[sy*w+sx] || visited[sy*w+sx] {
				continue
			}

			rowMinX := make(map[int]int)
			rowMaxX := make(map[int]int)
			size := 0
			minY, maxY := sy, sy

			stack = append(stack[:0], image.Point{X: sx, Y: sy})
			visited[sy*w+sx] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++
				if p.Y < minY {
					minY = p.Y
				}
				if p.Y > maxY {
					maxY = p.Y
				}
				if mx, ok := rowMinX[p.Y]; !ok || p.X < mx {
					rowMinX[p.Y] = p.X
				}
				if mx, ok := rowMaxX[p.Y]; !ok || p.X > mx {
					rowMaxX[p.Y] = p.X
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						if binary[ny*w+nx] && !visited[ny*w+nx] {
							visited[ny*w+nx] = true
							stack = append(stack, image.Point{X: nx, Y: ny})
						}
					}
				}
			}

			if size < minSize {
				continue
			}
			comp := &component{
				size:    size,
				minY:    minY,
				rowMinX: make([]int, maxY-minY+1),
				rowMaxX: make([]int, maxY-minY+1),
			}
			for y := minY; y <= maxY; y++ {
				if mx, ok := rowMinX[y]; ok {
					comp.rowMinX[y-minY] = mx
					comp.rowMaxX[y-minY] = rowMaxX[y]
				} else {
					// Row gap inside an 8-connected component cannot
					// happen for external contours; keep it harmless.
					comp.rowMinX[y-minY] = -1
					comp.rowMaxX[y-minY] = -1
				}
			}
			components = append(components, comp)
		}
	}
	return components
}

// hullPoints returns the component's per-row extreme pixels as float
// points for the convex hull.
func (c *component) hullPoints() []point {
	pts := make([]point, 0, 2*len(c.rowMinX))
	for i := range c.rowMinX {
		if c.rowMinX[i] < 0 {
			continue
		}
		y := float64(c.minY + i)
		pts = append(pts, point{float64(c.rowMinX[i]), y})
		if c.rowMaxX[i] != c.rowMinX[i] {
			pts = append(pts, point{float64(c.rowMaxX[i]), y})
		}
	}
	return pts
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
