package simulation

import (
	"fmt"
	"sort"
	"sync"
)

type entry struct {
	config  *SimulationConfig
	factory func() Simulation
}

// Registry manages available simulations and their manifests
type Registry struct {
	mu          sync.RWMutex
	simulations map[string]entry
}

// NewRegistry creates a new simulation registry
func NewRegistry() *Registry {
	return &Registry{
		simulations: make(map[string]entry),
	}
}

// Register adds a simulation under its manifest name
func (r *Registry) Register(cfg *SimulationConfig, factory func() Simulation) error {
	if cfg == nil {
		return fmt.Errorf("simulation config is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.simulations[cfg.Name]; exists {
		return fmt.Errorf("simulation %s already registered", cfg.Name)
	}

	r.simulations[cfg.Name] = entry{config: cfg, factory: factory}
	return nil
}

// Get returns a new instance of the requested simulation
func (r *Registry) Get(name string) (Simulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.simulations[name]
	if !exists {
		return nil, fmt.Errorf("simulation %s not found", name)
	}

	return e.factory(), nil
}

// Config returns the manifest of the requested simulation
func (r *Registry) Config(name string) (*SimulationConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.simulations[name]
	if !exists {
		return nil, fmt.Errorf("simulation %s not found", name)
	}
	return e.config, nil
}

// List returns all registered simulation names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.simulations))
	for name := range r.simulations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global simulation registry
var DefaultRegistry = NewRegistry()
