package swarmcanvas

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/picogrid/swarm-canvas/pkg/simulation"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

//go:embed simulation.yaml
var manifestYAML []byte

// Manifest is the embedded parameter manifest
var Manifest = simulation.MustParseSimulationConfig(manifestYAML)

// Renderers
const (
	RendererTerminal = "terminal"
	RendererPNG      = "png"
	RendererNone     = "none"
)

// Config holds the configuration for the swarm canvas simulation
type Config struct {
	Engine         swarm.Config
	Seed           int64
	Renderer       string
	FPS            int
	OutputDir      string
	PNGEvery       int
	TelemetryEvery int
	Duration       time.Duration
	MaxTicks       uint64
}

// ValidateAndParse fills missing parameters from the manifest defaults,
// checks each against its manifest constraints and builds a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	values := Manifest.Defaults()
	for name, raw := range params {
		param, ok := Manifest.Parameter(name)
		if !ok {
			return nil, fmt.Errorf("unknown parameter %s", name)
		}
		v, err := param.Coerce(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		values[name] = v
	}

	config := &Config{
		Engine: swarm.Config{
			AgentCount:         values["agent_count"].(int),
			Width:              values["width"].(float64),
			Height:             values["height"].(float64),
			CommunicationRange: values["communication_range"].(float64),
			BoundaryMargin:     values["boundary_margin"].(float64),
			SpeedMultiplier:    values["speed_multiplier"].(float64),
			GraphStrategy:      swarm.GraphStrategy(values["graph_strategy"].(string)),
		},
		Seed:           int64(values["seed"].(int)),
		Renderer:       values["renderer"].(string),
		FPS:            values["fps"].(int),
		OutputDir:      values["output_dir"].(string),
		PNGEvery:       values["png_every"].(int),
		TelemetryEvery: values["telemetry_every"].(int),
		Duration:       values["duration"].(time.Duration),
		MaxTicks:       uint64(values["max_ticks"].(int)),
	}
	config.Engine.FrameInterval = time.Second / time.Duration(config.FPS)

	if err := config.Engine.Validate(); err != nil {
		return nil, err
	}
	if config.Renderer == RendererPNG && config.OutputDir == "" {
		return nil, fmt.Errorf("output_dir is required for the png renderer")
	}

	return config, nil
}
