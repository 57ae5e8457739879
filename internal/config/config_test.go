package config

import (
	"strings"
	"testing"
	"time"

	"seedcounter/internal/fusion"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8000 {
		t.Errorf("Port: got %d, expected 8000", cfg.Port)
	}
	if cfg.SeedlingConfidence != fusion.DefaultSeedlingConfidence {
		t.Errorf("SeedlingConfidence: got %v, expected 0.8", cfg.SeedlingConfidence)
	} else if cfg.SeedlingConfidence != 0.8 {
		t.Errorf("SeedlingConfidence: got %v, expected 0.8", cfg.SeedlingConfidence)
	}
	if cfg.EmptyCellConfidence != fusion.DefaultEmptyCellConfidence {
		t.Errorf("EmptyCellConfidence: got %v, expected 0.6", cfg.EmptyCellConfidence)
	} else if cfg.EmptyCellConfidence != 0.6 {
		t.Errorf("EmptyCellConfidence: got %v, expected 0.6", cfg.EmptyCellConfidence)
	}
	if cfg.IoUThreshold != fusion.DefaultIoUThreshold {
		t.Errorf("IoUThreshold: got %v, expected 0.1", cfg.IoUThreshold)
	} else if cfg.IoUThreshold != 0.1 {
		t.Errorf("IoUThreshold: got %v, expected 0.1", cfg.IoUThreshold)
	}
	if cfg.SeedlingClass != "plantula" || cfg.EmptyCellClass != "celda_vacia" {
		t.Errorf("class names: got %q/%q", cfg.SeedlingClass, cfg.EmptyCellClass)
	}
	if cfg.MaxUploadSize != 20<<20 {
		t.Errorf("MaxUploadSize: got %d, expected %d", cfg.MaxUploadSize, 20<<20)
	}
	if cfg.ProcessingTimeout != 60*time.Second {
		t.Errorf("ProcessingTimeout: got %v", cfg.ProcessingTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoad_ColorsFromEnvironment(t *testing.T) {
	t.Setenv("SEEDLING_COLOR", "#12ab34")
	t.Setenv("EMPTY_CELL_COLOR", "#FF0000")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected hex colors to validate, got %v", err)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("IOU_THRESHOLD", "0.25")
	t.Setenv("SEEDLING_MODEL_CLASSES", "plantula, maleza ,,")
	t.Setenv("PROCESSING_WORKERS", "4")
	t.Setenv("DETECTOR_TIMEOUT", "5")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:8000,https://example.org")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Port: got %d, expected 9090", cfg.Port)
	}
	if cfg.IoUThreshold != 0.25 {
		t.Errorf("IoUThreshold: got %v, expected 0.25", cfg.IoUThreshold)
	}
	if strings.Join(cfg.SeedlingModelClasses, "|") != "plantula|maleza" {
		t.Errorf("SeedlingModelClasses: got %v", cfg.SeedlingModelClasses)
	}
	if cfg.ProcessingWorkers != 4 {
		t.Errorf("ProcessingWorkers: got %d, expected 4", cfg.ProcessingWorkers)
	}
	if cfg.DetectorTimeout != 5*time.Second {
		t.Errorf("DetectorTimeout: got %v, expected 5s", cfg.DetectorTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "abc")
	t.Setenv("SEEDLING_CONFIDENCE", "high")

	cfg := Load()

	if cfg.Port != 8000 {
		t.Errorf("Port: got %d, expected default 8000", cfg.Port)
	}
	if cfg.SeedlingConfidence != fusion.DefaultSeedlingConfidence {
		t.Errorf("SeedlingConfidence: got %v, expected default 0.8", cfg.SeedlingConfidence)
	} else if cfg.SeedlingConfidence != 0.8 {
		t.Errorf("SeedlingConfidence: got %v, expected default 0.8", cfg.SeedlingConfidence)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"confidence above one", func(c *Config) { c.SeedlingConfidence = 1.5 }},
		{"negative iou", func(c *Config) { c.IoUThreshold = -0.1 }},
		{"no workers", func(c *Config) { c.ProcessingWorkers = 0 }},
		{"unknown backend", func(c *Config) { c.DetectorBackend = "tflite" }},
		{"http without urls", func(c *Config) { c.DetectorBackend = BackendHTTP }},
		{"empty class", func(c *Config) { c.EmptyCellClass = "" }},
		{"tiny input", func(c *Config) { c.ModelInputSize = 8 }},
		{"bad seedling color", func(c *Config) { c.SeedlingColor = "green" }},
		{"non-hex empty cell color", func(c *Config) { c.EmptyCellColor = "#GG00FF" }},
	}

	for _, tt := range tests {
		cfg := Load()
		tt.modify(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidate_HTTPBackend(t *testing.T) {
	cfg := Load()
	cfg.DetectorBackend = BackendHTTP
	cfg.SeedlingDetectorURL = "http://localhost:9000/seedlings"
	cfg.EmptyCellDetectorURL = "http://localhost:9000/cells"

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid http config, got %v", err)
	}
}
