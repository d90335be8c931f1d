package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/rootfreq/pkg/rootfreq/analytics"
	"github.com/cognicore/rootfreq/pkg/rootfreq/internalerr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rootfreq.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsMatchStockAnalysis(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input != DefaultInput || cfg.Output != DefaultOutput {
		t.Errorf("paths = %q, %q", cfg.Input, cfg.Output)
	}

	want := analytics.Params{
		TopN:           10,
		MinCountInSura: 3,
		MinRatio:       3.0,
		Alpha:          0.5,
		MinKL:          0.002,
		KLLimit:        100,
		MinM:           10.0,
		MLimit:         100,
	}
	if got := cfg.AnalyzerParams(); got != want {
		t.Errorf("params = %+v, want %+v", got, want)
	}
	if cfg.Arabic || cfg.SQLitePath != "" || cfg.MetricsTextfile != "" {
		t.Error("optional outputs must be off by default")
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
input: corpus.txt
output: out/report.json
top_n: 20
alpha: 1.0
distinctive:
  min_ratio: 2.5
kl:
  limit: 50
arabic: true
sqlite_path: out/report.db
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input != "corpus.txt" || cfg.Output != "out/report.json" {
		t.Errorf("paths = %q, %q", cfg.Input, cfg.Output)
	}
	if cfg.TopN != 20 || cfg.Alpha != 1.0 {
		t.Errorf("top_n=%d alpha=%v", cfg.TopN, cfg.Alpha)
	}
	if cfg.Distinctive.MinRatio != 2.5 || cfg.Distinctive.MinCountInSura != 3 {
		t.Errorf("distinctive = %+v (unset keys keep defaults)", cfg.Distinctive)
	}
	if cfg.KL.Limit != 50 || cfg.KL.Min != 0.002 {
		t.Errorf("kl = %+v", cfg.KL)
	}
	if !cfg.Arabic || cfg.SQLitePath != "out/report.db" {
		t.Errorf("arabic=%v sqlite=%q", cfg.Arabic, cfg.SQLitePath)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROOTFREQ_INPUT", "/data/in.txt")
	t.Setenv("ROOTFREQ_OUTPUT", "/data/out.json")
	t.Setenv("ROOTFREQ_SQLITE_PATH", "/data/out.db")
	t.Setenv("ROOTFREQ_METRICS_TEXTFILE", "/data/rootfreq.prom")
	t.Setenv("ROOTFREQ_LOG_LEVEL", "warn")
	t.Setenv("ROOTFREQ_LOG_FORMAT", "json")

	cfg, err := Load(writeConfig(t, "input: ignored.txt\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input != "/data/in.txt" || cfg.Output != "/data/out.json" {
		t.Errorf("env must win over file: %q, %q", cfg.Input, cfg.Output)
	}
	if cfg.SQLitePath != "/data/out.db" || cfg.MetricsTextfile != "/data/rootfreq.prom" {
		t.Errorf("sqlite=%q metrics=%q", cfg.SQLitePath, cfg.MetricsTextfile)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "top_n: [oops\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty input", func(c *Config) { c.Input = " " }},
		{"empty output", func(c *Config) { c.Output = "" }},
		{"zero top_n", func(c *Config) { c.TopN = 0 }},
		{"zero alpha", func(c *Config) { c.Alpha = 0 }},
		{"negative alpha", func(c *Config) { c.Alpha = -0.5 }},
		{"negative min count", func(c *Config) { c.Distinctive.MinCountInSura = -1 }},
		{"negative kl limit", func(c *Config) { c.KL.Limit = -1 }},
		{"negative m limit", func(c *Config) { c.MScore.Limit = -1 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
