//go:build !gocv
// +build !gocv

package capture

import "fmt"

// OpenDevice fails when built without the gocv tag; live mode needs the
// OpenCV-backed build.
func OpenDevice(id int) (Device, error) {
	return nil, fmt.Errorf("%w %d: built without the gocv tag", ErrDeviceOpen, id)
}

// NewWindow fails when built without the gocv tag.
func NewWindow(_ string) (Window, error) {
	return nil, fmt.Errorf("display window requires the gocv build tag")
}
