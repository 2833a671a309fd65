package feature

import (
	"image"
	"math"
)

// circleOffsets is the 16-pixel Bresenham circle of radius 3 used by
// the segment test, in clockwise order starting from the top.
var circleOffsets = [16][2]int{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

// segmentArc is the contiguous run length required by the corner test.
const segmentArc = 9

// centroidRadius bounds the circular patch used for orientation.
const centroidRadius = 7

// corner is an internal detection on one pyramid level, in that level's
// pixel coordinates.
type corner struct {
	x, y     int
	score    float64
	angle    float64
}

// detectCorners runs a FAST-9 segment test over gray, scores the
// responses, and suppresses non-maxima in a 3x3 neighborhood.
//
// Pixels closer than margin to any border are never tested, which keeps
// later patch sampling inside the image. Scan order is row-major, so
// the output order is deterministic for a fixed input.
func detectCorners(gray *image.Gray, threshold int, margin int) []corner {
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	if w <= 2*margin || h <= 2*margin {
		return nil
	}

	scores := make([]float64, w*h)
	var candidates []corner

	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			s := cornerScore(gray, x, y, threshold)
			if s > 0 {
				scores[y*w+x] = s
				candidates = append(candidates, corner{x: x, y: y, score: s})
			}
		}
	}

	// 3x3 non-maximum suppression. Ties break toward the earlier pixel
	// in scan order so the result stays deterministic.
	kept := candidates[:0]
	for _, c := range candidates {
		max := true
		for dy := -1; dy <= 1 && max; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				n := scores[(c.y+dy)*w+(c.x+dx)]
				if n > c.score || (n == c.score && (dy < 0 || (dy == 0 && dx < 0))) {
					max = false
					break
				}
			}
		}
		if max {
			c.angle = orientation(gray, c.x, c.y)
			kept = append(kept, c)
		}
	}
	return kept
}

// cornerScore applies the FAST segment test at (x, y).
//
// Returns 0 when the pixel is not a corner; otherwise returns the sum of
// absolute differences of the circle pixels that exceed the threshold,
// which serves as the response used for ranking and suppression.
func cornerScore(gray *image.Gray, x, y, threshold int) float64 {
	p := int(gray.GrayAt(x, y).Y)
	hi := p + threshold
	lo := p - threshold

	var vals [16]int
	for i, off := range circleOffsets {
		vals[i] = int(gray.GrayAt(x+off[0], y+off[1]).Y)
	}

	// Cheap reject: of the four compass pixels at least three must be
	// all-brighter or all-darker for a 9-point arc to exist.
	brighter, darker := 0, 0
	for _, i := range [4]int{0, 4, 8, 12} {
		if vals[i] > hi {
			brighter++
		} else if vals[i] < lo {
			darker++
		}
	}
	if brighter < 3 && darker < 3 {
		return 0
	}

	if !hasArc(vals[:], hi, lo) {
		return 0
	}

	score := 0.0
	for _, v := range vals {
		if v > hi || v < lo {
			score += math.Abs(float64(v - p))
		}
	}
	return score
}

// hasArc reports whether the circle contains a contiguous run of at
// least segmentArc pixels all above hi or all below lo, with wraparound.
func hasArc(vals []int, hi, lo int) bool {
	runBright, runDark := 0, 0
	// Doubling the walk handles runs that wrap past index 15.
	for i := 0; i < 2*len(vals); i++ {
		v := vals[i%len(vals)]
		if v > hi {
			runBright++
			if runBright >= segmentArc {
				return true
			}
		} else {
			runBright = 0
		}
		if v < lo {
			runDark++
			if runDark >= segmentArc {
				return true
			}
		} else {
			runDark = 0
		}
	}
	return false
}

// orientation computes the intensity-centroid angle of the circular
// patch around (x, y): the direction from the patch center toward its
// center of mass. Uniform patches yield angle 0.
func orientation(gray *image.Gray, x, y int) float64 {
	var m10, m01 float64
	for dy := -centroidRadius; dy <= centroidRadius; dy++ {
		for dx := -centroidRadius; dx <= centroidRadius; dx++ {
			if dx*dx+dy*dy > centroidRadius*centroidRadius {
				continue
			}
			v := float64(gray.GrayAt(x+dx, y+dy).Y)
			m10 += float64(dx) * v
			m01 += float64(dy) * v
		}
	}
	if m10 == 0 && m01 == 0 {
		return 0
	}
	return math.Atan2(m01, m10)
}
