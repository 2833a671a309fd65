package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion extracts a rectangular region from an image.
//
// The rectangle is clamped to the image bounds first, so detector boxes
// that run partially out of frame still yield the visible part. Returns
// nil if the clamped region is empty.
func CropRegion(img image.Image, rect image.Rectangle) image.Image {
	clamped := rect.Intersect(img.Bounds())
	if clamped.Empty() {
		return nil
	}
	return imaging.Crop(img, clamped)
}
