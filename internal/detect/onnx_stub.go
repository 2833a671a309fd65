//go:build !onnx
// +build !onnx

package detect

import (
	"errors"
	"image"

	"go.uber.org/zap"
)

// ONNX stub type when built without the onnx tag (see onnx.go for the
// real implementation).
type ONNX struct{}

// NewONNX returns an error when built without the onnx tag.
func NewONNX(_ string, _ *zap.Logger) (*ONNX, error) {
	return nil, errors.New("onnx detector requires the onnx build tag and the onnxruntime library")
}

// Close is a no-op on the stub.
func (o *ONNX) Close() error { return nil }

// Detect never runs on the stub; the constructor already failed.
func (o *ONNX) Detect(_ image.Image, _ float64) []Region { return nil }
