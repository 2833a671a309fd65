// Package feature turns images into sets of local keypoints and compact
// binary descriptors suitable for Hamming-distance matching.
//
// The extraction pipeline is deterministic: a fixed input image always
// produces the same keypoints and descriptors in the same order. All
// detection runs on a single intensity channel; color inputs are
// normalized first.
package feature

import "math/bits"

// DescriptorBytes is the descriptor length in bytes (256 bits).
const DescriptorBytes = 32

// Descriptor is a 256-bit binary encoding of the local appearance
// around a keypoint. Descriptors are compared by Hamming distance.
type Descriptor [DescriptorBytes]byte

// Distance returns the Hamming distance between two descriptors
// (0 to 256).
func (d Descriptor) Distance(other Descriptor) int {
	dist := 0
	for i := 0; i < DescriptorBytes; i++ {
		dist += bits.OnesCount8(d[i] ^ other[i])
	}
	return dist
}

// Keypoint is a distinctive, repeatably-locatable point in an image.
//
// X and Y are in full-resolution image coordinates regardless of which
// pyramid level the point was detected on; Scale records that level's
// downscale factor (1.0 = original resolution).
type Keypoint struct {
	X, Y     float64
	Scale    float64
	Angle    float64 // orientation in radians
	Response float64 // corner strength used for ranking
}

// FeatureSet is an ordered sequence of keypoints with a parallel
// sequence of descriptors. A FeatureSet with zero descriptors is a
// valid value, not an error: it is what blank or structureless images
// produce.
type FeatureSet struct {
	Keypoints   []Keypoint
	Descriptors []Descriptor
}

// Len returns the number of keypoint/descriptor pairs.
func (fs *FeatureSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.Descriptors)
}

// Empty reports whether the set holds no descriptors.
func (fs *FeatureSet) Empty() bool {
	return fs.Len() == 0
}
