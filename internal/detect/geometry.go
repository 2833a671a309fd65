package detect

import (
	"image"
	"math"
	"sort"
)

type point struct {
	x, y float64
}

// rotatedRect is a minimum-area rectangle described by its four corners
// and side lengths. The corners are in frame coordinates.
type rotatedRect struct {
	corners [4]point
	w, h    float64
}

// axisAlignedBounds returns the bounding box of the rectangle's
// corners, which is what downstream cropping works with.
func (r rotatedRect) axisAlignedBounds() image.Rectangle {
	minX, minY := r.corners[0].x, r.corners[0].y
	maxX, maxY := minX, minY
	for _, c := range r.corners[1:] {
		minX = math.Min(minX, c.x)
		minY = math.Min(minY, c.y)
		maxX = math.Max(maxX, c.x)
		maxY = math.Max(maxY, c.y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}

// convexHull computes the convex hull with the monotone chain
// algorithm, returned in counter-clockwise order.
func convexHull(pts []point) []point {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].x != sorted[j].x {
			return sorted[i].x < sorted[j].x
		}
		return sorted[i].y < sorted[j].y
	})

	cross := func(o, a, b point) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}

	var lower []point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// minAreaRect finds the minimum-area rectangle enclosing the points.
//
// Rotating calipers over the convex hull: the minimum-area enclosing
// rectangle always has one side collinear with a hull edge, so testing
// one orientation per edge is exhaustive.
func minAreaRect(pts []point) rotatedRect {
	hull := convexHull(pts)
	if len(hull) == 0 {
		return rotatedRect{}
	}
	if len(hull) == 1 {
		p := hull[0]
		return rotatedRect{corners: [4]point{p, p, p, p}}
	}

	best := rotatedRect{}
	bestArea := math.Inf(1)
	for i := range hull {
		p, q := hull[i], hull[(i+1)%len(hull)]
		dx, dy := q.x-p.x, q.y-p.y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Unit vectors along and perpendicular to the edge.
		ux, uy := dx/length, dy/length

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, hp := range hull {
			u := hp.x*ux + hp.y*uy
			v := -hp.x*uy + hp.y*ux
			minU = math.Min(minU, u)
			maxU = math.Max(maxU, u)
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}

		w := maxU - minU
		h := maxV - minV
		area := w * h
		if area >= bestArea {
			continue
		}
		bestArea = area
		toFrame := func(u, v float64) point {
			return point{x: u*ux - v*uy, y: u*uy + v*ux}
		}
		best = rotatedRect{
			corners: [4]point{
				toFrame(minU, minV),
				toFrame(maxU, minV),
				toFrame(maxU, maxV),
				toFrame(minU, maxV),
			},
			w: w,
			h: h,
		}
	}
	return best
}
