package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cardsight/internal/analyze"
	"cardsight/internal/logging"
	"cardsight/internal/report"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Identify every card image in a directory",
		Long: `Analyze every image file directly inside a directory and print an
aggregated count per identified card. Images whose best match falls
below the classification threshold are counted as undefined.

Examples:
  cardsight batch ./scans
  cardsight batch --csv counts.csv ./scans`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.buildEngine()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			controller := analyze.NewBatchController(engine, logging.Named(logger, "analyze"))
			results, err := controller.AnalyzeDir(args[0])
			if err != nil {
				return err
			}

			summary := report.Aggregate(results)
			fmt.Println(summary.RenderTable())
			fmt.Printf("%d images analyzed\n", summary.Total)

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("failed to create CSV file: %w", err)
				}
				defer f.Close()
				if err := summary.WriteCSV(f); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the aggregated counts to this CSV file")
	return cmd
}
