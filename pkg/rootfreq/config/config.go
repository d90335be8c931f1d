// Package config loads the root frequency job settings from an optional YAML
// file with environment-variable overrides. With no file and no environment
// the defaults reproduce the stock analysis.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/rootfreq/pkg/rootfreq/analytics"
	"github.com/cognicore/rootfreq/pkg/rootfreq/internalerr"
	"github.com/cognicore/rootfreq/pkg/rootfreq/smoothing"
)

// Default paths, relative to the working directory.
const (
	DefaultInput  = "data/quranic-corpus-morphology-0.4.txt"
	DefaultOutput = "data/roots-freq.json"
)

// Config is the job configuration.
type Config struct {
	Input           string            `yaml:"input"`
	Output          string            `yaml:"output"`
	TopN            int               `yaml:"top_n"`
	Alpha           float64           `yaml:"alpha"`
	Distinctive     DistinctiveConfig `yaml:"distinctive"`
	KL              ThresholdConfig   `yaml:"kl"`
	MScore          ThresholdConfig   `yaml:"m_score"`
	Arabic          bool              `yaml:"arabic"`
	SQLitePath      string            `yaml:"sqlite_path"`
	MetricsTextfile string            `yaml:"metrics_textfile"`
	Logging         LoggingConfig     `yaml:"logging"`
}

// DistinctiveConfig holds the distinctive-root filter.
type DistinctiveConfig struct {
	MinCountInSura int64   `yaml:"min_count_in_sura"`
	MinRatio       float64 `yaml:"min_ratio"`
}

// ThresholdConfig is a minimum score plus a list length cap.
type ThresholdConfig struct {
	Min   float64 `yaml:"min"`
	Limit int     `yaml:"limit"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the stock configuration.
func Default() *Config {
	p := analytics.DefaultParams()
	return &Config{
		Input:  DefaultInput,
		Output: DefaultOutput,
		TopN:   p.TopN,
		Alpha:  smoothing.DefaultAlpha,
		Distinctive: DistinctiveConfig{
			MinCountInSura: p.MinCountInSura,
			MinRatio:       p.MinRatio,
		},
		KL:     ThresholdConfig{Min: p.MinKL, Limit: p.KLLimit},
		MScore: ThresholdConfig{Min: p.MinM, Limit: p.MLimit},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file (if path is not empty) over the defaults,
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads ROOTFREQ_* environment variables into cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROOTFREQ_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("ROOTFREQ_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("ROOTFREQ_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := os.Getenv("ROOTFREQ_METRICS_TEXTFILE"); v != "" {
		cfg.MetricsTextfile = v
	}
	if v := os.Getenv("ROOTFREQ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ROOTFREQ_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Input) == "":
		return fmt.Errorf("%w: input path is required", internalerr.ErrInvalidConfig)
	case strings.TrimSpace(c.Output) == "":
		return fmt.Errorf("%w: output path is required", internalerr.ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be >= 1, got %d", internalerr.ErrInvalidConfig, c.TopN)
	case c.Alpha <= 0:
		return fmt.Errorf("%w: alpha must be > 0, got %v", internalerr.ErrInvalidConfig, c.Alpha)
	case c.Distinctive.MinCountInSura < 0:
		return fmt.Errorf("%w: distinctive.min_count_in_sura must be >= 0", internalerr.ErrInvalidConfig)
	case c.KL.Limit < 0 || c.MScore.Limit < 0:
		return fmt.Errorf("%w: list limits must be >= 0", internalerr.ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", internalerr.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// AnalyzerParams converts the config into analyzer parameters.
func (c *Config) AnalyzerParams() analytics.Params {
	return analytics.Params{
		TopN:           c.TopN,
		MinCountInSura: c.Distinctive.MinCountInSura,
		MinRatio:       c.Distinctive.MinRatio,
		Alpha:          c.Alpha,
		MinKL:          c.KL.Min,
		KLLimit:        c.KL.Limit,
		MinM:           c.MScore.Min,
		MLimit:         c.MScore.Limit,
	}
}
