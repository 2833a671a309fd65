package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Extractor.MaxKeypoints != 500 {
		t.Errorf("MaxKeypoints = %d, want 500", cfg.Extractor.MaxKeypoints)
	}
	if cfg.Extractor.FASTThreshold != 20 {
		t.Errorf("FASTThreshold = %d, want 20", cfg.Extractor.FASTThreshold)
	}
	if cfg.Extractor.PyramidLevels != 4 || cfg.Extractor.PyramidScale != 1.25 {
		t.Errorf("pyramid = %d/%f, want 4/1.25",
			cfg.Extractor.PyramidLevels, cfg.Extractor.PyramidScale)
	}
	if cfg.Matcher.GoodMatchDistance != 45 {
		t.Errorf("GoodMatchDistance = %d, want 45", cfg.Matcher.GoodMatchDistance)
	}
	if cfg.Matcher.ScoreThreshold != 0.25 {
		t.Errorf("ScoreThreshold = %f, want 0.25", cfg.Matcher.ScoreThreshold)
	}
	if cfg.Matcher.DisplayCount != 3 {
		t.Errorf("DisplayCount = %d, want 3", cfg.Matcher.DisplayCount)
	}
	if cfg.Detector.Strategy != "geometric" {
		t.Errorf("Strategy = %s, want geometric", cfg.Detector.Strategy)
	}
	if cfg.Detector.MinArea != 2000 || cfg.Detector.MaxArea != 200000 {
		t.Errorf("area bounds = %f/%f, want 2000/200000",
			cfg.Detector.MinArea, cfg.Detector.MaxArea)
	}
	if cfg.Detector.MinAspect != 0.5 || cfg.Detector.MaxAspect != 0.9 {
		t.Errorf("aspect bounds = %f/%f, want 0.5/0.9",
			cfg.Detector.MinAspect, cfg.Detector.MaxAspect)
	}
	if cfg.Live.ShutdownTimeout != "2s" {
		t.Errorf("ShutdownTimeout = %s, want 2s", cfg.Live.ShutdownTimeout)
	}
	if cfg.Scraper.MaxPages != 200 {
		t.Errorf("MaxPages = %d, want 200", cfg.Scraper.MaxPages)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
reference:
  root_dir: ./cards
matcher:
  score_threshold: 0.4
detector:
  strategy: onnx
  model_path: /models/cards.onnx
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug not loaded")
	}
	// "./" paths resolve relative to the config file.
	if want := filepath.Join(dir, "cards"); cfg.Reference.RootDir != want {
		t.Errorf("RootDir = %s, want %s", cfg.Reference.RootDir, want)
	}
	if cfg.Matcher.ScoreThreshold != 0.4 {
		t.Errorf("ScoreThreshold = %f, want 0.4", cfg.Matcher.ScoreThreshold)
	}
	if cfg.Detector.Strategy != "onnx" {
		t.Errorf("Strategy = %s, want onnx", cfg.Detector.Strategy)
	}
	if cfg.Detector.ModelPath != "/models/cards.onnx" {
		t.Errorf("ModelPath = %s, want absolute path preserved", cfg.Detector.ModelPath)
	}
	// Unset fields still get defaults.
	if cfg.Matcher.GoodMatchDistance != 45 {
		t.Errorf("GoodMatchDistance = %d, want default 45", cfg.Matcher.GoodMatchDistance)
	}
	if cfg.Extractor.MaxKeypoints != 500 {
		t.Errorf("MaxKeypoints = %d, want default 500", cfg.Extractor.MaxKeypoints)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("matcher: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of invalid YAML succeeded, want error")
	}
}
