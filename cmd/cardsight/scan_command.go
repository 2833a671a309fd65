package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardsight/internal/analyze"
	"cardsight/internal/imaging"
	"cardsight/internal/logging"
	"cardsight/internal/ocr"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Identify the card in a single image",
		Long: `Identify a single card image against the reference store and print
the ranked candidates. A top score below the classification threshold is
reported as undefined.

Examples:
  cardsight scan query.png
  cardsight scan --verify query.png   # cross-check via the printed card number`,
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
			result, err := controller.AnalyzeImage(args[0])
			if err != nil {
				return err
			}

			if result.Undefined {
				fmt.Println("result: undefined")
			} else {
				fmt.Printf("result: %s\n", result.Candidates[0].CardID)
			}
			for i, c := range result.Candidates {
				fmt.Printf("  %d. %-24s %.3f\n", i+1, c.CardID, c.Score)
			}

			if verify {
				if err := verifyByNumber(args[0], result, logger); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Cross-check the match by reading the printed card number")
	return cmd
}

// verifyByNumber reads the printed card number off the query image and
// compares it with the feature-match result. Disagreement is reported,
// not treated as an error; OCR on glare or low resolution is unreliable
// enough that the feature match stays authoritative.
func verifyByNumber(path string, result *analyze.Result, logger *zap.Logger) error {
	if !ocr.Available() {
		return ocr.ErrUnavailable
	}
	img, err := imaging.Load(path)
	if err != nil {
		return err
	}
	number, err := ocr.ReadNumber(img)
	if err != nil {
		return fmt.Errorf("card number readback failed: %w", err)
	}
	if number == "" {
		fmt.Println("verify: no card number readable")
		return nil
	}

	top := result.TopID()
	switch {
	case top == "":
		fmt.Printf("verify: read %q but match is undefined\n", number)
	case matchesNumber(top, number):
		fmt.Printf("verify: confirmed by card number %q\n", number)
	default:
		fmt.Printf("verify: MISMATCH, read %q but matched %q\n", number, top)
		logger.Warn("card number disagrees with feature match",
			zap.String("read", number), zap.String("matched", top))
	}
	return nil
}

// matchesNumber checks a card ID like "hSD04/hSD04-001" against a read
// number like "hSD04-001".
func matchesNumber(cardID, number string) bool {
	return len(cardID) >= len(number) && cardID[len(cardID)-len(number):] == number
}
