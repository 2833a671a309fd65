package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Reference.RootDir == "" {
		cfg.Reference.RootDir = "data/reference_cards"
	}
	if cfg.Extractor.MaxKeypoints == 0 {
		cfg.Extractor.MaxKeypoints = 500
	}
	if cfg.Extractor.FASTThreshold == 0 {
		cfg.Extractor.FASTThreshold = 20
	}
	if cfg.Extractor.PyramidLevels == 0 {
		cfg.Extractor.PyramidLevels = 4
	}
	if cfg.Extractor.PyramidScale == 0 {
		cfg.Extractor.PyramidScale = 1.25
	}
	if cfg.Matcher.GoodMatchDistance == 0 {
		cfg.Matcher.GoodMatchDistance = 45
	}
	if cfg.Matcher.ScoreThreshold == 0 {
		cfg.Matcher.ScoreThreshold = 0.25
	}
	if cfg.Matcher.DisplayCount == 0 {
		cfg.Matcher.DisplayCount = 3
	}
	if cfg.Detector.Strategy == "" {
		cfg.Detector.Strategy = "geometric"
	}
	if cfg.Detector.MinArea == 0 {
		cfg.Detector.MinArea = 2000
	}
	if cfg.Detector.MaxArea == 0 {
		cfg.Detector.MaxArea = 200000
	}
	if cfg.Detector.MinAspect == 0 {
		cfg.Detector.MinAspect = 0.5
	}
	if cfg.Detector.MaxAspect == 0 {
		cfg.Detector.MaxAspect = 0.9
	}
	if cfg.Live.SnapshotDir == "" {
		cfg.Live.SnapshotDir = "data/snapshots"
	}
	if cfg.Live.DisplayHeight == 0 {
		cfg.Live.DisplayHeight = 400
	}
	if cfg.Live.ShutdownTimeout == "" {
		cfg.Live.ShutdownTimeout = "2s"
	}
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = "https://hololive-official-cardgame.com"
	}
	if cfg.Scraper.TempDir == "" {
		cfg.Scraper.TempDir = "temp/downloads"
	}
	if cfg.Scraper.MaxPages == 0 {
		cfg.Scraper.MaxPages = 200
	}
}
