package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/swarm-canvas/pkg/simulation"
)

// SimulationInfo contains information about a registered simulation
type SimulationInfo struct {
	Name   string
	Config *simulation.SimulationConfig
}

// DiscoverSimulations lists the simulations compiled into reg with their
// embedded manifests, sorted by name
func DiscoverSimulations(reg *simulation.Registry) ([]SimulationInfo, error) {
	names := reg.List()
	infos := make([]SimulationInfo, 0, len(names))
	for _, name := range names {
		cfg, err := reg.Config(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load manifest for %s: %w", name, err)
		}
		infos = append(infos, SimulationInfo{Name: name, Config: cfg})
	}
	return infos, nil
}

// LoadParamsFile reads a flat YAML map of parameter values
func LoadParamsFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}

	params := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	return params, nil
}
