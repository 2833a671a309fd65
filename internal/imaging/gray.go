package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// ToGray converts any image to a single-channel grayscale image.
//
// Conversion goes through imaging.Grayscale, which weights channels with
// the standard luminance coefficients, so repeated conversions of the
// same input are byte-identical. The returned image always has its
// origin at (0,0).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}

	flat := imaging.Grayscale(img)
	b := flat.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := flat.Pix[y*flat.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			// Grayscale output has R == G == B; take one channel.
			dst[x] = src[x*4]
		}
	}
	return gray
}

// BlurGray applies a Gaussian blur to a grayscale image and returns the
// result as grayscale again.
func BlurGray(gray *image.Gray, radius float64) *image.Gray {
	blurred := blur.Gaussian(gray, radius)
	out := image.NewGray(image.Rect(0, 0, blurred.Bounds().Dx(), blurred.Bounds().Dy()))
	for y := 0; y < blurred.Bounds().Dy(); y++ {
		src := blurred.Pix[y*blurred.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < blurred.Bounds().Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}
