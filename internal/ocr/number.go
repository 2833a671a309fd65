package ocr

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnavailable is returned when the binary was built without OCR
// support.
var ErrUnavailable = errors.New("ocr support not compiled in (requires cgo on linux)")

// cardNumberPattern matches identifiers like "hSD04-001" or "hBP01-045".
var cardNumberPattern = regexp.MustCompile(`[A-Za-z]+[A-Za-z0-9]*-[0-9]{2,4}`)

// ExtractNumber pulls the first card-number-shaped token out of raw
// OCR text, or "" when there is none.
func ExtractNumber(text string) string {
	return cardNumberPattern.FindString(strings.TrimSpace(text))
}
