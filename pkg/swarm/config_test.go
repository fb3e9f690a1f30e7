package swarm

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero agents", func(c *Config) { c.AgentCount = 0 }},
		{"negative agents", func(c *Config) { c.AgentCount = -3 }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"NaN height", func(c *Config) { c.Height = math.NaN() }},
		{"zero range", func(c *Config) { c.CommunicationRange = 0 }},
		{"negative margin", func(c *Config) { c.BoundaryMargin = -1 }},
		{"margin fills canvas", func(c *Config) { c.BoundaryMargin = 300 }},
		{"margin exceeds short side", func(c *Config) { c.Width, c.Height, c.BoundaryMargin = 1000, 100, 60 }},
		{"negative speed", func(c *Config) { c.SpeedMultiplier = -1 }},
		{"negative frame interval", func(c *Config) { c.FrameInterval = -time.Millisecond }},
		{"unknown strategy", func(c *Config) { c.GraphStrategy = "quadtree" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewRejectsDegenerateGeometry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.BoundaryMargin = 40, 40, 20

	e, err := New(cfg, WithLogger(quietLogger()))
	if e != nil {
		t.Errorf("expected no engine for degenerate geometry")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewFillsOptionalDefaults(t *testing.T) {
	cfg := Config{AgentCount: 3, Width: 200, Height: 200, CommunicationRange: 50, BoundaryMargin: 10}
	e := newTestEngine(t, cfg)

	got := e.Config()
	if got.SpeedMultiplier != DefaultSpeedMultiplier {
		t.Errorf("expected default speed, got %g", got.SpeedMultiplier)
	}
	if got.FrameInterval != DefaultFrameInterval {
		t.Errorf("expected default frame interval, got %s", got.FrameInterval)
	}
	if got.GraphStrategy != GraphAuto {
		t.Errorf("expected auto strategy, got %q", got.GraphStrategy)
	}
}
