package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"cardsight/internal/config"
	"cardsight/internal/feature"
	"cardsight/internal/index"
	"cardsight/internal/logging"
	"cardsight/internal/match"
)

// commandContext carries the persistent flags and lazily built shared
// state every subcommand needs: configuration, logger, and the matching
// engine over the reference index.
type commandContext struct {
	configFlag *string
	debugFlag  *bool

	cfg    *config.Config
	logger *zap.Logger
}

func newCommandContext(configFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, debugFlag: debugFlag}
}

// ensureConfig loads the configuration once. Without --config the
// defaults apply; an explicitly named file must exist.
func (ctx *commandContext) ensureConfig() (*config.Config, error) {
	if ctx.cfg != nil {
		return ctx.cfg, nil
	}
	path := *ctx.configFlag
	if path == "" {
		ctx.cfg = config.Default()
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		ctx.cfg = cfg
	}
	if *ctx.debugFlag {
		ctx.cfg.Debug = true
	}
	return ctx.cfg, nil
}

// ensureLogger builds the process logger once, honoring the debug flag.
func (ctx *commandContext) ensureLogger() (*zap.Logger, error) {
	if ctx.logger != nil {
		return ctx.logger, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	ctx.logger = logger
	return logger, nil
}

// buildEngine loads the reference index from disk and wires the
// matching engine over it. Every recognition command starts here.
func (ctx *commandContext) buildEngine() (*match.Engine, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	extractor := feature.NewExtractor(cfg.Extractor)
	idx, err := index.Build(cfg.Reference.RootDir, extractor, logging.Named(logger, "index"))
	if err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		logger.Warn("reference index is empty; every query will come back undefined",
			zap.String("root", cfg.Reference.RootDir))
	}
	return match.NewEngine(idx, extractor, cfg.Matcher), nil
}
