package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cardsight/internal/capture"
	"cardsight/internal/detect"
	"cardsight/internal/logging"
	"cardsight/internal/overlay"
	"cardsight/internal/pipeline"
)

func newLiveCommand(ctx *commandContext) *cobra.Command {
	var device int

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Recognize cards from a live camera feed",
		Long: `Open a camera, detect card-shaped regions in each frame, and overlay
live identifications. Press 'q' in the display window to stop, 's' to
save the current raw frame to the snapshot directory.

Requires a binary built with camera support (the gocv build tag).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := ctx.buildEngine()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("device") {
				cfg.Live.Device = device
			}

			detector, err := detect.New(cfg.Detector, logging.Named(logger, "detect"))
			if err != nil {
				return err
			}
			renderer := overlay.NewRenderer(engine.Index(), cfg.Live.DisplayHeight, engine.Threshold)

			timeout, err := time.ParseDuration(cfg.Live.ShutdownTimeout)
			if err != nil {
				return fmt.Errorf("invalid shutdown_timeout: %w", err)
			}
			coordinator := pipeline.NewCoordinator(engine, detector, renderer, pipeline.Options{
				ConfidenceThreshold: cfg.Detector.ConfidenceThreshold,
				ShutdownTimeout:     timeout,
				SnapshotDir:         cfg.Live.SnapshotDir,
			}, logging.Named(logger, "pipeline"))

			window, err := capture.NewWindow("cardsight")
			if err != nil {
				return err
			}
			defer window.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return coordinator.Run(runCtx, func() (capture.Device, error) {
				return capture.OpenDevice(cfg.Live.Device)
			}, window)
		},
	}

	cmd.Flags().IntVar(&device, "device", 0, "Camera device index (overrides config)")
	return cmd
}
