package feature

import "math/rand"

// patternSeed fixes the descriptor sampling pattern. Changing it
// invalidates every stored descriptor, so it is a constant, not
// configuration.
const patternSeed = 0x5ca1ab1e

// patchRadius bounds the sampling pattern around a keypoint.
const patchRadius = 15

// samplePair is one descriptor bit: compare intensity at p1 vs p2.
type samplePair struct {
	x1, y1, x2, y2 float64
}

// samplePattern holds the 256 point pairs shared by every descriptor.
// Generated once at init from the fixed seed, so extraction stays
// deterministic across runs and processes.
var samplePattern [8 * DescriptorBytes]samplePair

func init() {
	rng := rand.New(rand.NewSource(patternSeed))
	// Gaussian spread of patchRadius/2.2 keeps nearly all samples inside
	// the patch; outliers are clamped.
	sigma := float64(patchRadius) / 2.2
	draw := func() float64 {
		v := rng.NormFloat64() * sigma
		if v > patchRadius {
			v = patchRadius
		}
		if v < -patchRadius {
			v = -patchRadius
		}
		return v
	}
	for i := range samplePattern {
		samplePattern[i] = samplePair{
			x1: draw(), y1: draw(),
			x2: draw(), y2: draw(),
		}
	}
}
