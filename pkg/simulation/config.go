package simulation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parameter types understood by manifests
const (
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeDuration = "duration"
)

// SimulationConfig is the manifest of a simulation, loaded from its
// embedded simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// ParseSimulationConfig decodes and validates a manifest
func ParseSimulationConfig(data []byte) (*SimulationConfig, error) {
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustParseSimulationConfig is ParseSimulationConfig for embedded manifests
func MustParseSimulationConfig(data []byte) *SimulationConfig {
	cfg, err := ParseSimulationConfig(data)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the manifest is usable: a name, unique typed parameters
// and defaults that satisfy their own constraints.
func (c *SimulationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("simulation config has no name")
	}
	seen := make(map[string]bool, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Name == "" {
			return fmt.Errorf("simulation %s: parameter without a name", c.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("simulation %s: duplicate parameter %s", c.Name, p.Name)
		}
		seen[p.Name] = true

		switch p.Type {
		case TypeInteger, TypeFloat, TypeString, TypeBoolean, TypeDuration:
		default:
			return fmt.Errorf("simulation %s: parameter %s has unsupported type %q", c.Name, p.Name, p.Type)
		}
		if p.Default != nil {
			if _, err := p.Coerce(p.Default); err != nil {
				return fmt.Errorf("simulation %s: default for %s: %w", c.Name, p.Name, err)
			}
		}
	}
	return nil
}

// Parameter looks up a parameter by name
func (c *SimulationConfig) Parameter(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Defaults returns every parameter that has a default, coerced to its type
func (c *SimulationConfig) Defaults() map[string]interface{} {
	out := make(map[string]interface{}, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.Default == nil {
			continue
		}
		if v, err := p.Coerce(p.Default); err == nil {
			out[p.Name] = v
		}
	}
	return out
}

// Coerce converts v to the parameter's Go type (int, float64, string, bool
// or time.Duration) and checks min, max and options. Strings are parsed, so
// environment variables and prompt answers go through the same path as YAML.
func (p Parameter) Coerce(v interface{}) (interface{}, error) {
	switch p.Type {
	case TypeInteger:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if p.Min != nil {
			if lo, err := toInt(p.Min); err == nil && n < lo {
				return nil, fmt.Errorf("value must be at least %d", lo)
			}
		}
		if p.Max != nil {
			if hi, err := toInt(p.Max); err == nil && n > hi {
				return nil, fmt.Errorf("value must be at most %d", hi)
			}
		}
		return n, nil

	case TypeFloat:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		if p.Min != nil {
			if lo, err := toFloat64(p.Min); err == nil && f < lo {
				return nil, fmt.Errorf("value must be at least %g", lo)
			}
		}
		if p.Max != nil {
			if hi, err := toFloat64(p.Max); err == nil && f > hi {
				return nil, fmt.Errorf("value must be at most %g", hi)
			}
		}
		return f, nil

	case TypeString:
		s := fmt.Sprintf("%v", v)
		if len(p.Options) > 0 {
			for _, o := range p.Options {
				if s == o {
					return s, nil
				}
			}
			return nil, fmt.Errorf("value must be one of: %s", strings.Join(p.Options, ", "))
		}
		return s, nil

	case TypeBoolean:
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return nil, fmt.Errorf("invalid boolean %q", val)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("invalid boolean %v", v)
		}

	case TypeDuration:
		d, err := toDuration(v)
		if err != nil {
			return nil, err
		}
		if d < 0 {
			return nil, fmt.Errorf("duration must not be negative")
		}
		return d, nil

	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", p.Type)
	}
}

func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("invalid integer %g", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid integer %v", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("invalid number %v", v)
	}
}

// toDuration accepts Go duration strings or a number of seconds
func toDuration(v interface{}) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid duration format %q (use formats like 5m, 1h30m, 30s)", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid duration %v", v)
	}
}
