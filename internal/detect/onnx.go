//go:build onnx
// +build onnx

package detect

import (
	"fmt"
	"image"
	"math"
	"sort"
	"sync"

	dimaging "github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// Model geometry for YOLO-style detectors exported at 640x640: the
// output tensor is [1, 4+classes, 8400] anchors.
const (
	onnxInputSize    = 640
	onnxAnchors      = 8400
	onnxClasses      = 80
	onnxIoUThreshold = 0.45
)

// ONNX is the learned detection strategy: an external object-detection
// model run through ONNX Runtime. Unlike the geometric strategy it
// produces genuine confidence scores, so the confidence threshold does
// real filtering here.
type ONNX struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	logger       *zap.Logger

	// The session's tensors are reused between runs.
	mu sync.Mutex
}

// NewONNX loads the detection model and prepares a reusable session.
func NewONNX(modelPath string, logger *zap.Logger) (*ONNX, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	inputData := make([]float32, 3*onnxInputSize*onnxInputSize)
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, onnxInputSize, onnxInputSize), inputData)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputData := make([]float32, (4+onnxClasses)*onnxAnchors)
	outputTensor, err := ort.NewTensor(ort.NewShape(1, 4+onnxClasses, onnxAnchors), outputData)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNX{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		logger:       logger,
	}, nil
}

// Close releases the ONNX session and tensors.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.Destroy()
	o.inputTensor.Destroy()
	o.outputTensor.Destroy()
	return nil
}

// Detect runs the model on a frame and returns the boxes at or above
// confThreshold, mapped back to frame coordinates. Frames producing no
// qualifying box yield an empty slice, never an error; inference
// failures are logged and also yield an empty slice so a live loop is
// never taken down by one bad frame.
func (o *ONNX) Detect(frame image.Image, confThreshold float64) []Region {
	o.mu.Lock()
	defer o.mu.Unlock()

	scale, padX, padY := o.fillInput(frame)
	if err := o.session.Run(); err != nil {
		o.logger.Warn("ONNX inference failed", zap.Error(err))
		return nil
	}

	out := o.outputTensor.GetData()
	var regions []Region
	for a := 0; a < onnxAnchors; a++ {
		conf := float32(0)
		for c := 0; c < onnxClasses; c++ {
			if s := out[(4+c)*onnxAnchors+a]; s > conf {
				conf = s
			}
		}
		if float64(conf) < confThreshold {
			continue
		}
		cx := float64(out[0*onnxAnchors+a])
		cy := float64(out[1*onnxAnchors+a])
		bw := float64(out[2*onnxAnchors+a])
		bh := float64(out[3*onnxAnchors+a])

		x1 := (cx - bw/2 - padX) / scale
		y1 := (cy - bh/2 - padY) / scale
		x2 := (cx + bw/2 - padX) / scale
		y2 := (cy + bh/2 - padY) / scale
		bounds := image.Rect(int(x1), int(y1), int(x2), int(y2)).
			Intersect(frame.Bounds())
		if bounds.Empty() {
			continue
		}
		regions = append(regions, Region{Bounds: bounds, Confidence: float64(conf)})
	}
	return nonMaxSuppress(regions, onnxIoUThreshold)
}

// fillInput letterboxes the frame into the 640x640 input tensor and
// returns the scale and padding needed to map boxes back.
func (o *ONNX) fillInput(frame image.Image) (scale, padX, padY float64) {
	b := frame.Bounds()
	scale = math.Min(
		float64(onnxInputSize)/float64(b.Dx()),
		float64(onnxInputSize)/float64(b.Dy()),
	)
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	padX = float64(onnxInputSize-w) / 2
	padY = float64(onnxInputSize-h) / 2

	resized := dimaging.Resize(frame, w, h, dimaging.Linear)
	data := o.inputTensor.GetData()
	for i := range data {
		data[i] = 0.5 // letterbox gray
	}
	x0 := int(padX)
	y0 := int(padY)
	plane := onnxInputSize * onnxInputSize
	for y := 0; y < h; y++ {
		src := resized.Pix[y*resized.Stride:]
		row := (y0 + y) * onnxInputSize
		for x := 0; x < w; x++ {
			idx := row + x0 + x
			data[idx] = float32(src[x*4]) / 255
			data[plane+idx] = float32(src[x*4+1]) / 255
			data[2*plane+idx] = float32(src[x*4+2]) / 255
		}
	}
	return scale, padX, padY
}

// nonMaxSuppress drops boxes that overlap a higher-confidence box by
// more than the IoU threshold.
func nonMaxSuppress(regions []Region, iouThreshold float64) []Region {
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	var kept []Region
	for _, r := range regions {
		suppressed := false
		for _, k := range kept {
			if iou(r.Bounds, k.Bounds) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, r)
		}
	}
	return kept
}

func iou(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - interArea
	return interArea / union
}
