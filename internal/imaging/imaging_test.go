package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 100, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.png")
	writeTestPNG(t, path, 40, 56)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 56 {
		t.Errorf("loaded bounds %v, want 40x56", img.Bounds())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("Load of a missing file succeeded, want error")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of a corrupt file succeeded, want error")
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"card.png", true},
		{"card.PNG", true},
		{"card.jpg", true},
		{"card.jpeg", true},
		{"card.gif", true},
		{"card.txt", false},
		{"card.webp", false},
		{"card", false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.want {
			t.Errorf("IsImageFile(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestToGray(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}

	gray := ToGray(img)
	if gray.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Errorf("gray bounds %v, want 20x10 at origin", gray.Bounds())
	}
	// Luminance-weighted conversion of a uniform image is uniform.
	first := gray.GrayAt(0, 0).Y
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if gray.GrayAt(x, y).Y != first {
				t.Fatalf("non-uniform gray at (%d,%d)", x, y)
			}
		}
	}
}

func TestToGrayIdempotent(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	if got := ToGray(gray); got != gray {
		t.Error("ToGray of an origin-based *image.Gray should return it unchanged")
	}
}

func TestBlurGrayPreservesSize(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 32, 24))
	gray.SetGray(16, 12, color.Gray{Y: 255})

	blurred := BlurGray(gray, 2.0)
	if blurred.Bounds() != gray.Bounds() {
		t.Errorf("blurred bounds %v, want %v", blurred.Bounds(), gray.Bounds())
	}
	// Blur spreads the impulse: neighbors pick up intensity.
	if blurred.GrayAt(15, 12).Y == 0 {
		t.Error("blur did not spread to neighboring pixels")
	}
}

func TestCropRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))

	tests := []struct {
		name string
		rect image.Rectangle
		want image.Rectangle // expected size; zero for nil result
	}{
		{"inside", image.Rect(10, 10, 50, 40), image.Rect(0, 0, 40, 30)},
		{"overhanging", image.Rect(80, 60, 150, 120), image.Rect(0, 0, 20, 20)},
		{"outside", image.Rect(200, 200, 300, 300), image.Rectangle{}},
		{"empty", image.Rect(10, 10, 10, 10), image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CropRegion(img, tt.rect)
			if tt.want.Empty() {
				if got != nil {
					t.Errorf("got %v, want nil", got.Bounds())
				}
				return
			}
			if got == nil {
				t.Fatal("got nil, want a crop")
			}
			if got.Bounds().Dx() != tt.want.Dx() || got.Bounds().Dy() != tt.want.Dy() {
				t.Errorf("crop size %v, want %v", got.Bounds(), tt.want)
			}
		})
	}
}
