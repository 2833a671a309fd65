// Package config provides configuration loading and structs for cardsight.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Reference ReferenceConfig `yaml:"reference"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Detector  DetectorConfig  `yaml:"detector"`
	Live      LiveConfig      `yaml:"live"`
	Scraper   ScraperConfig   `yaml:"scraper"`
}

// ReferenceConfig holds the reference card store location.
type ReferenceConfig struct {
	// RootDir contains one subdirectory per card set; each subdirectory
	// holds image files named by card number.
	RootDir string `yaml:"root_dir"`
}

// ExtractorConfig holds feature extraction settings.
type ExtractorConfig struct {
	// MaxKeypoints caps the number of keypoints kept per image so that
	// matching cost stays bounded.
	MaxKeypoints int `yaml:"max_keypoints"`

	// FASTThreshold is the intensity delta used by the corner test.
	FASTThreshold int `yaml:"fast_threshold"`

	// PyramidLevels and PyramidScale control the image pyramid used for
	// scale coverage. Level i is downscaled by PyramidScale^i.
	PyramidLevels int     `yaml:"pyramid_levels"`
	PyramidScale  float64 `yaml:"pyramid_scale"`
}

// MatcherConfig holds scoring and ranking settings.
type MatcherConfig struct {
	// GoodMatchDistance is the Hamming distance below which a
	// cross-checked match counts toward the good-match ratio.
	GoodMatchDistance int `yaml:"good_match_distance"`

	// ScoreThreshold is the classification threshold: a top match below
	// it is presented as "undefined" rather than a positive ID.
	ScoreThreshold float64 `yaml:"score_threshold"`

	// DisplayCount is how many ranked candidates are reported.
	DisplayCount int `yaml:"display_count"`
}

// DetectorConfig holds region detection settings.
type DetectorConfig struct {
	// Strategy selects the detector: "geometric" or "onnx".
	Strategy string `yaml:"strategy"`

	// ModelPath locates the object-detection model for the onnx strategy.
	ModelPath string `yaml:"model_path"`

	// ConfidenceThreshold filters learned-strategy boxes. The geometric
	// strategy reports a fixed confidence of 1.0 and ignores it.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// MinArea and MaxArea bound the accepted region size in pixels².
	MinArea float64 `yaml:"min_area"`
	MaxArea float64 `yaml:"max_area"`

	// MinAspect and MaxAspect bound the short/long side ratio of the
	// minimum-area rectangle; trading cards sit in a narrow band.
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`
}

// LiveConfig holds camera session settings.
type LiveConfig struct {
	Device          int    `yaml:"device"`
	SnapshotDir     string `yaml:"snapshot_dir"`
	DisplayHeight   int    `yaml:"display_height"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ScraperConfig holds reference catalog fetch settings.
type ScraperConfig struct {
	BaseURL  string `yaml:"base_url"`
	TempDir  string `yaml:"temp_dir"`
	MaxPages int    `yaml:"max_pages"`
}

// Load reads and parses the config file at path, expands paths, and
// applies defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Reference.RootDir = expandPath(cfg.Reference.RootDir, configDir)
	cfg.Detector.ModelPath = expandPath(cfg.Detector.ModelPath, configDir)
	cfg.Live.SnapshotDir = expandPath(cfg.Live.SnapshotDir, configDir)
	cfg.Scraper.TempDir = expandPath(cfg.Scraper.TempDir, configDir)

	return &cfg, nil
}

// Default returns a config with every default applied, for callers that
// run without a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
