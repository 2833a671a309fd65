// Package capture abstracts the video capture device and display
// window used by live mode.
//
// The real implementations sit behind the "gocv" build tag; without it
// the constructors fail cleanly and live mode reports that capture is
// unavailable. The interfaces keep the pipeline testable with synthetic
// devices.
package capture

import (
	"errors"
	"image"
)

// ErrDeviceOpen indicates the capture device could not be opened. This
// is fatal for a live session: no partial start, no retry.
var ErrDeviceOpen = errors.New("cannot open capture device")

// ErrFrameRead indicates a mid-session frame grab failed. The capture
// loop terminates gracefully on it; the device is still released.
var ErrFrameRead = errors.New("cannot read frame from capture device")

// Device produces frames from a camera.
type Device interface {
	// Read grabs the next frame. A failed grab returns an error
	// wrapping ErrFrameRead.
	Read() (image.Image, error)

	// Close releases the device. Safe to call more than once.
	Close() error
}

// Window displays composed frames and reports key presses.
type Window interface {
	// Present shows a frame and returns the pressed key code, or -1
	// when no key was pressed.
	Present(img image.Image) (key int, err error)

	// Close destroys the window.
	Close() error
}
