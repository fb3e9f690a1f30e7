package swarm

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid swarm configuration")
	// ErrInvalidSpeed is returned for a speed multiplier that is not a positive finite number.
	ErrInvalidSpeed = errors.New("speed multiplier must be a positive number")
	// ErrNoSurface is returned when a frame has nowhere to be drawn.
	ErrNoSurface = errors.New("no drawing surface")
	// ErrAlreadyRunning is returned by Start on a running engine.
	ErrAlreadyRunning = errors.New("engine already running")
)

// Config holds the geometry and behaviour of one engine instance.
type Config struct {
	AgentCount         int
	Width              float64
	Height             float64
	CommunicationRange float64
	BoundaryMargin     float64
	SpeedMultiplier    float64
	FrameInterval      time.Duration
	GraphStrategy      GraphStrategy
}

// Defaults
const (
	DefaultAgentCount         = 20
	DefaultWidth              = 800.0
	DefaultHeight             = 600.0
	DefaultCommunicationRange = 100.0
	DefaultBoundaryMargin     = 20.0
	DefaultSpeedMultiplier    = 1.0
	DefaultFrameInterval      = time.Second / 60
)

// DefaultConfig returns the stock 20-agent, 800x600 configuration.
func DefaultConfig() Config {
	return Config{
		AgentCount:         DefaultAgentCount,
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		CommunicationRange: DefaultCommunicationRange,
		BoundaryMargin:     DefaultBoundaryMargin,
		SpeedMultiplier:    DefaultSpeedMultiplier,
		FrameInterval:      DefaultFrameInterval,
		GraphStrategy:      GraphAuto,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.AgentCount <= 0 {
		return fmt.Errorf("%w: agent count must be positive, got %d", ErrInvalidConfig, c.AgentCount)
	}
	if !positive(c.Width) || !positive(c.Height) {
		return fmt.Errorf("%w: canvas must have positive dimensions, got %gx%g", ErrInvalidConfig, c.Width, c.Height)
	}
	if !positive(c.CommunicationRange) {
		return fmt.Errorf("%w: communication range must be positive, got %g", ErrInvalidConfig, c.CommunicationRange)
	}
	if math.IsNaN(c.BoundaryMargin) || c.BoundaryMargin < 0 {
		return fmt.Errorf("%w: boundary margin must be non-negative, got %g", ErrInvalidConfig, c.BoundaryMargin)
	}
	if 2*c.BoundaryMargin >= math.Min(c.Width, c.Height) {
		return fmt.Errorf("%w: boundary margin %g leaves no room inside a %gx%g canvas",
			ErrInvalidConfig, c.BoundaryMargin, c.Width, c.Height)
	}
	if !positive(c.SpeedMultiplier) {
		return fmt.Errorf("%w: speed multiplier must be positive, got %g", ErrInvalidConfig, c.SpeedMultiplier)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame interval must be positive, got %s", ErrInvalidConfig, c.FrameInterval)
	}
	if !c.GraphStrategy.valid() {
		return fmt.Errorf("%w: unknown graph strategy %q", ErrInvalidConfig, c.GraphStrategy)
	}
	return nil
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.SpeedMultiplier == 0 {
		c.SpeedMultiplier = DefaultSpeedMultiplier
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = DefaultFrameInterval
	}
	if c.GraphStrategy == "" {
		c.GraphStrategy = GraphAuto
	}
	return c
}

// bounds returns the padded rectangle agents live in.
func (c Config) bounds() (minX, maxX, minY, maxY float64) {
	return c.BoundaryMargin, c.Width - c.BoundaryMargin, c.BoundaryMargin, c.Height - c.BoundaryMargin
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Interactive hosts keep user-adjusted speed inside this range. The engine
// itself accepts any positive multiplier.
const (
	MinControlSpeed = 0.1
	MaxControlSpeed = 5.0
)

// ClampSpeed limits v to the interactive control range.
func ClampSpeed(v float64) float64 {
	return clamp(v, MinControlSpeed, MaxControlSpeed)
}
