//go:build !cgo || !linux

// Package ocr reads the printed card number off a card crop with
// Tesseract. This stub satisfies builds without cgo; the reader
// reports itself unavailable and never returns a number.
package ocr

import (
	"image"
)

// Available reports whether the reader is compiled in.
func Available() bool { return false }

// ReadNumber always fails in this build.
func ReadNumber(image.Image) (string, error) {
	return "", ErrUnavailable
}
