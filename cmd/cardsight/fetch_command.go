package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cardsight/internal/logging"
	"cardsight/internal/scraper"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download card images from the catalog into the reference store",
		Long: `Crawl the card catalog and download every card image into the
reference store layout (one directory per set, one image per card).
Already downloaded cards are overwritten with the latest version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			s, err := scraper.New(cfg.Scraper, cfg.Reference.RootDir, logging.Named(logger, "scraper"))
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.Run(runCtx)
		},
	}
}
