package feature

import (
	"image"
	"math"

	"cardsight/internal/imaging"
)

// smoothForSampling blurs a grayscale image before descriptor sampling.
// Binary intensity comparisons are noise-sensitive; the blur trades a
// little distinctiveness for a lot of stability.
func smoothForSampling(gray *image.Gray) *image.Gray {
	return imaging.BlurGray(gray, 2.0)
}

// describe samples the rotated pattern around (x, y) on the smoothed
// image and packs the 256 comparisons into a Descriptor.
//
// The pattern is steered by the keypoint angle so that a rotated copy
// of a patch produces (approximately) the same bits. The caller must
// keep (x, y) at least patchRadius*sqrt2 away from the borders.
func describe(smoothed *image.Gray, x, y int, angle float64) Descriptor {
	sin, cos := math.Sincos(angle)
	var d Descriptor
	for i, p := range samplePattern {
		x1 := x + int(math.Round(cos*p.x1-sin*p.y1))
		y1 := y + int(math.Round(sin*p.x1+cos*p.y1))
		x2 := x + int(math.Round(cos*p.x2-sin*p.y2))
		y2 := y + int(math.Round(sin*p.x2+cos*p.y2))
		if smoothed.GrayAt(x1, y1).Y < smoothed.GrayAt(x2, y2).Y {
			d[i/8] |= 1 << uint(i%8)
		}
	}
	return d
}
