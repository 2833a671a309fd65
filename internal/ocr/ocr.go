//go:build cgo && linux

// Package ocr reads the printed card number off a card crop with
// Tesseract. It is an optional cross-check for feature matching: a
// readable number either confirms the top candidate or flags a
// disagreement worth logging. Builds without cgo get a stub that
// reports the reader as unavailable.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Available reports whether the reader is compiled in.
func Available() bool { return true }

// ReadNumber runs OCR over a card crop and returns the first string
// that looks like a card number. An empty string with nil error means
// text was recognized but no card number was found in it.
func ReadNumber(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode crop: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	// Card numbers are alphanumeric with a single dash; constraining the
	// character set cuts most misreads.
	if err := client.SetWhitelist("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-"); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return ExtractNumber(text), nil
}
