//go:build gocv
// +build gocv

package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// gocvDevice wraps a gocv VideoCapture as a Device.
type gocvDevice struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens the camera with the given identifier.
func OpenDevice(id int) (Device, error) {
	cap, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrDeviceOpen, id, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w %d", ErrDeviceOpen, id)
	}
	return &gocvDevice{cap: cap, mat: gocv.NewMat()}, nil
}

func (d *gocvDevice) Read() (image.Image, error) {
	if ok := d.cap.Read(&d.mat); !ok || d.mat.Empty() {
		return nil, ErrFrameRead
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrameRead, err)
	}
	return img, nil
}

func (d *gocvDevice) Close() error {
	d.mat.Close()
	return d.cap.Close()
}

// gocvWindow wraps a gocv window as a Window.
type gocvWindow struct {
	win *gocv.Window
}

// NewWindow creates an on-screen display window.
func NewWindow(title string) (Window, error) {
	return &gocvWindow{win: gocv.NewWindow(title)}, nil
}

func (w *gocvWindow) Present(img image.Image) (int, error) {
	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return -1, fmt.Errorf("failed to convert frame for display: %w", err)
	}
	defer mat.Close()
	w.win.IMShow(mat)
	return w.win.WaitKey(1), nil
}

func (w *gocvWindow) Close() error {
	return w.win.Close()
}
