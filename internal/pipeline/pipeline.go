// Package pipeline coordinates the live capture/detect/match/render
// loop.
//
// A session runs exactly two concurrent activities: the capture/render
// loop and a matching worker. They communicate through a single-slot
// work channel (capture → matcher, newest-wins) and an atomically
// swapped result snapshot (matcher → renderer). Matching latency never
// gates the visible frame rate: when the matcher is busy, fresh
// detection batches are dropped, not queued — stale detections are
// worthless for a live overlay.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"cardsight/internal/capture"
	"cardsight/internal/detect"
	"cardsight/internal/imaging"
	"cardsight/internal/match"
	"cardsight/internal/overlay"
)

// State is the lifecycle state of a capture session.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Keys the render loop reacts to.
const (
	keyQuit     = 'q'
	keySnapshot = 's'
)

// Batch is one detection hand-off from the capture loop to the matcher:
// the detected regions of a frame with their cropped sub-images.
type Batch struct {
	Regions []detect.Region
	Crops   []image.Image
}

// RegionResult is the ranked candidates for one region of a processed
// batch.
type RegionResult struct {
	Region     detect.Region
	Candidates []match.Candidate
}

// Snapshot is the matcher's latest published result set. It is
// immutable once published; readers always see a fully written value or
// the previous one, never a partial update.
type Snapshot struct {
	Results []RegionResult
}

// Options configures a session.
type Options struct {
	// ConfidenceThreshold is passed to the detector on every frame.
	ConfidenceThreshold float64

	// ShutdownTimeout bounds how long shutdown waits for the matcher to
	// finish its current batch before releasing the device anyway.
	ShutdownTimeout time.Duration

	// SnapshotDir receives raw frames saved with the snapshot key.
	SnapshotDir string
}

// Coordinator drives one live session. A Coordinator is single-use:
// Run may be called once.
type Coordinator struct {
	engine   *match.Engine
	detector detect.Detector
	renderer *overlay.Renderer
	opts     Options
	logger   *zap.Logger

	state   atomic.Int32
	work    chan Batch
	latest  atomic.Pointer[Snapshot]
	dropped atomic.Int64
}

// NewCoordinator wires a session over the shared matching engine, a
// region detector, and a display renderer.
func NewCoordinator(engine *match.Engine, detector detect.Detector, renderer *overlay.Renderer, opts Options, logger *zap.Logger) *Coordinator {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 2 * time.Second
	}
	return &Coordinator{
		engine:   engine,
		detector: detector,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
	}
}

// State returns the session's current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// DroppedBatches reports how many detection batches were discarded
// because the matcher was still busy. Drops are expected under load and
// are never re-attempted; the next batch supersedes them.
func (c *Coordinator) DroppedBatches() int64 {
	return c.dropped.Load()
}

// Latest returns the matcher's most recent result snapshot, or nil
// before the first batch completes.
func (c *Coordinator) Latest() *Snapshot {
	return c.latest.Load()
}

// Run executes a full capture session and blocks until it ends.
//
// The device is opened first; failure means an immediate transition to
// Stopped with the open error and no partial start. Once running, the
// loop exits on the quit key, on ctx cancellation, or on a frame read
// failure. Every exit path releases the device: shutdown waits up to
// ShutdownTimeout for the matcher's current batch and then proceeds
// regardless.
func (c *Coordinator) Run(ctx context.Context, openDevice func() (capture.Device, error), window capture.Window) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.New("session already used")
	}
	defer c.state.Store(int32(StateStopped))

	device, err := openDevice()
	if err != nil {
		c.logger.Error("capture device open failed", zap.Error(err))
		return err
	}
	defer func() {
		if cerr := device.Close(); cerr != nil {
			c.logger.Warn("device release failed", zap.Error(cerr))
		}
	}()

	c.work = make(chan Batch, 1)
	matchCtx, cancelMatch := context.WithCancel(context.Background())
	defer cancelMatch()
	matcherDone := make(chan struct{})
	go c.matchLoop(matchCtx, matcherDone)

	defer c.shutdown(cancelMatch, matcherDone)

	c.logger.Info("live session started")
	return c.captureLoop(ctx, device, window)
}

// captureLoop grabs frames, detects regions, hands batches to the
// matcher without blocking, and renders the frame with the latest
// available results.
func (c *Coordinator) captureLoop(ctx context.Context, device capture.Device, window capture.Window) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := device.Read()
		if err != nil {
			c.logger.Warn("frame read failed, ending session", zap.Error(err))
			return fmt.Errorf("%w: %v", capture.ErrFrameRead, err)
		}

		regions := c.detector.Detect(frame, c.opts.ConfidenceThreshold)
		if len(regions) > 0 {
			c.Submit(c.makeBatch(frame, regions))
		}

		boxes := c.composeBoxes(regions)
		display := c.renderer.Compose(frame, boxes)
		key, err := window.Present(display)
		if err != nil {
			c.logger.Warn("display failed, ending session", zap.Error(err))
			return err
		}
		switch key {
		case keyQuit:
			c.logger.Info("stop requested")
			return nil
		case keySnapshot:
			c.saveSnapshot(frame)
		}
	}
}

// makeBatch crops each region out of the frame. Crops are taken here so
// the matcher never touches the (reused) frame after hand-off.
func (c *Coordinator) makeBatch(frame image.Image, regions []detect.Region) Batch {
	batch := Batch{Regions: regions, Crops: make([]image.Image, len(regions))}
	for i, r := range regions {
		batch.Crops[i] = imaging.CropRegion(frame, r.Bounds)
	}
	return batch
}

// Submit offers a batch to the matcher without blocking. If the slot is
// occupied the batch is dropped and counted; the capture loop never
// waits on matching.
func (c *Coordinator) Submit(batch Batch) bool {
	select {
	case c.work <- batch:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// composeBoxes pairs the just-detected regions with the latest
// published candidates, which may lag a batch behind. Pairing is by
// rank order; regions without a counterpart render as still matching.
func (c *Coordinator) composeBoxes(regions []detect.Region) []overlay.Box {
	snap := c.latest.Load()
	boxes := make([]overlay.Box, len(regions))
	for i, r := range regions {
		boxes[i] = overlay.Box{Region: r}
		if snap != nil && i < len(snap.Results) {
			boxes[i].Candidates = snap.Results[i].Candidates
		}
	}
	if len(boxes) == 0 && snap != nil {
		// Keep the last identification visible between detections.
		for _, res := range snap.Results {
			boxes = append(boxes, overlay.Box{Region: res.Region, Candidates: res.Candidates})
		}
	}
	return boxes
}

// matchLoop is the matching activity: it blocks on the work channel,
// processes one batch at a time, and publishes results atomically. The
// blocking receive doubles as the cancellation point, so a stop signal
// is observed as soon as the current batch finishes.
func (c *Coordinator) matchLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-c.work:
			c.latest.Store(c.processBatch(batch))
		}
	}
}

// processBatch runs extraction and scoring for every crop. All heavy
// computation happens here, outside any synchronization; only the final
// pointer swap is shared.
func (c *Coordinator) processBatch(batch Batch) *Snapshot {
	snap := &Snapshot{Results: make([]RegionResult, len(batch.Regions))}
	for i, region := range batch.Regions {
		snap.Results[i] = RegionResult{Region: region}
		if batch.Crops[i] == nil {
			continue
		}
		snap.Results[i].Candidates = c.engine.FindMatches(batch.Crops[i])
	}
	return snap
}

// shutdown waits for the matcher with a bounded timeout. The device
// release does not depend on the matcher finishing: the deferred Close
// in Run proceeds either way.
func (c *Coordinator) shutdown(cancelMatch context.CancelFunc, matcherDone <-chan struct{}) {
	c.state.Store(int32(StateShuttingDown))
	cancelMatch()
	select {
	case <-matcherDone:
	case <-time.After(c.opts.ShutdownTimeout):
		c.logger.Warn("matcher did not finish before shutdown timeout, releasing device anyway")
	}
	c.logger.Info("live session ended", zap.Int64("dropped_batches", c.dropped.Load()))
}

// saveSnapshot writes the current raw frame to the snapshot directory.
func (c *Coordinator) saveSnapshot(frame image.Image) {
	if err := os.MkdirAll(c.opts.SnapshotDir, 0o755); err != nil {
		c.logger.Warn("snapshot directory unavailable", zap.Error(err))
		return
	}
	name := time.Now().Format("20060102-150405.000") + ".png"
	path := filepath.Join(c.opts.SnapshotDir, name)
	f, err := os.Create(path)
	if err != nil {
		c.logger.Warn("snapshot save failed", zap.Error(err))
		return
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		c.logger.Warn("snapshot encode failed", zap.Error(err))
		return
	}
	c.logger.Info("snapshot saved", zap.String("path", path))
}
