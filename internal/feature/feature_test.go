package feature

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"cardsight/internal/config"
)

// texturedImage builds a deterministic high-contrast image: random
// rectangles over a mid-gray background, seeded so every run sees the
// same pixels.
func texturedImage(seed int64, width, height int) image.Image {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}
	for i := 0; i < 40; i++ {
		x0 := rng.Intn(width)
		y0 := rng.Intn(height)
		w := 8 + rng.Intn(40)
		h := 8 + rng.Intn(40)
		v := uint8(0)
		if rng.Intn(2) == 1 {
			v = 255
		}
		for y := y0; y < y0+h && y < height; y++ {
			for x := x0; x < x0+w && x < width; x++ {
				img.Set(x, y, color.Gray{Y: v})
			}
		}
	}
	return img
}

func uniformImage(width, height int, v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func testExtractor() *Extractor {
	return NewExtractor(config.ExtractorConfig{
		MaxKeypoints:  500,
		FASTThreshold: 20,
		PyramidLevels: 4,
		PyramidScale:  1.25,
	})
}

func TestExtractTexturedImage(t *testing.T) {
	e := testExtractor()
	fs := e.Extract(texturedImage(1, 256, 360))

	if fs.Empty() {
		t.Fatal("expected keypoints on a textured image, got none")
	}
	if len(fs.Keypoints) != len(fs.Descriptors) {
		t.Errorf("keypoints and descriptors out of sync: %d vs %d",
			len(fs.Keypoints), len(fs.Descriptors))
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := testExtractor()
	img := texturedImage(2, 256, 360)

	a := e.Extract(img)
	b := e.Extract(img)

	if a.Len() != b.Len() {
		t.Fatalf("keypoint count differs between runs: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Keypoints {
		if a.Keypoints[i] != b.Keypoints[i] {
			t.Fatalf("keypoint %d differs: %+v vs %+v", i, a.Keypoints[i], b.Keypoints[i])
		}
		if a.Descriptors[i] != b.Descriptors[i] {
			t.Fatalf("descriptor %d differs", i)
		}
	}
}

func TestExtractBlankImage(t *testing.T) {
	e := testExtractor()
	fs := e.Extract(uniformImage(256, 256, 128))

	if !fs.Empty() {
		t.Errorf("uniform image: got %d keypoints, want 0", fs.Len())
	}
}

func TestExtractNilImage(t *testing.T) {
	e := testExtractor()
	fs := e.Extract(nil)
	if !fs.Empty() {
		t.Errorf("nil image: got %d keypoints, want 0", fs.Len())
	}
}

func TestExtractTinyImage(t *testing.T) {
	// Smaller than the border margin on every side: no room for a
	// single keypoint.
	e := testExtractor()
	fs := e.Extract(texturedImage(3, 16, 16))
	if !fs.Empty() {
		t.Errorf("tiny image: got %d keypoints, want 0", fs.Len())
	}
}

func TestExtractKeypointCap(t *testing.T) {
	e := NewExtractor(config.ExtractorConfig{
		MaxKeypoints:  50,
		FASTThreshold: 20,
		PyramidLevels: 4,
		PyramidScale:  1.25,
	})
	fs := e.Extract(texturedImage(4, 400, 400))

	if fs.Len() > 50 {
		t.Errorf("keypoint cap violated: got %d, want <= 50", fs.Len())
	}
	if fs.Empty() {
		t.Error("expected some keypoints under the cap")
	}
}

func TestExtractOrdering(t *testing.T) {
	e := testExtractor()
	fs := e.Extract(texturedImage(5, 300, 300))
	if fs.Len() < 2 {
		t.Skip("not enough keypoints to check ordering")
	}
	for i := 1; i < fs.Len(); i++ {
		if fs.Keypoints[i].Response > fs.Keypoints[i-1].Response {
			t.Fatalf("responses not non-increasing at %d: %f after %f",
				i, fs.Keypoints[i].Response, fs.Keypoints[i-1].Response)
		}
	}
}

func TestDescriptorDistance(t *testing.T) {
	var a, b Descriptor
	if got := a.Distance(b); got != 0 {
		t.Errorf("identical descriptors: distance %d, want 0", got)
	}

	b[0] = 0b00000001
	if got := a.Distance(b); got != 1 {
		t.Errorf("one-bit difference: distance %d, want 1", got)
	}

	for i := range b {
		b[i] = 0xFF
	}
	if got := a.Distance(b); got != 256 {
		t.Errorf("all-bits difference: distance %d, want 256", got)
	}
}

func TestFeatureSetNilSafe(t *testing.T) {
	var fs *FeatureSet
	if !fs.Empty() {
		t.Error("nil FeatureSet should report empty")
	}
	if fs.Len() != 0 {
		t.Errorf("nil FeatureSet: Len %d, want 0", fs.Len())
	}
}
