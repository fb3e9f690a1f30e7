package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir is the per-user configuration directory below $HOME
const Dir = ".swarm-sim"

// Profile is a named engine geometry preset
type Profile struct {
	Name               string  `yaml:"name"`
	AgentCount         int     `yaml:"agent_count"`
	Width              float64 `yaml:"width"`
	Height             float64 `yaml:"height"`
	CommunicationRange float64 `yaml:"communication_range"`
	SpeedMultiplier    float64 `yaml:"speed_multiplier,omitempty"`
	GraphStrategy      string  `yaml:"graph_strategy,omitempty"`

	// BoundaryMargin is a pointer because zero is a meaningful margin
	BoundaryMargin *float64 `yaml:"boundary_margin,omitempty"`
}

// Float64 returns a pointer to v, for optional profile fields
func Float64(v float64) *float64 {
	return &v
}

// Params returns the profile as simulation parameters; zero and unset fields
// are left out so manifest defaults still apply to them
func (p Profile) Params() map[string]interface{} {
	out := map[string]interface{}{}
	if p.AgentCount > 0 {
		out["agent_count"] = p.AgentCount
	}
	if p.Width > 0 {
		out["width"] = p.Width
	}
	if p.Height > 0 {
		out["height"] = p.Height
	}
	if p.CommunicationRange > 0 {
		out["communication_range"] = p.CommunicationRange
	}
	if p.BoundaryMargin != nil {
		out["boundary_margin"] = *p.BoundaryMargin
	}
	if p.SpeedMultiplier > 0 {
		out["speed_multiplier"] = p.SpeedMultiplier
	}
	if p.GraphStrategy != "" {
		out["graph_strategy"] = p.GraphStrategy
	}
	return out
}

// Config holds the saved profiles
type Config struct {
	Profiles []Profile `yaml:"profiles"`
	Selected string    `yaml:"selected,omitempty"`
}

// Find returns the profile called name
func (c *Config) Find(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Add appends p, rejecting duplicate names
func (c *Config) Add(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if _, exists := c.Find(p.Name); exists {
		return fmt.Errorf("profile %s already exists", p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// Remove deletes the profile called name
func (c *Config) Remove(name string) error {
	kept := make([]Profile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(c.Profiles) {
		return fmt.Errorf("profile %s not found", name)
	}
	c.Profiles = kept
	if c.Selected == name {
		c.Selected = ""
	}
	return nil
}

// ProfilesPath returns $HOME/.swarm-sim/profiles.yaml
func ProfilesPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, Dir, "profiles.yaml"), nil
}

// LoadProfiles loads profiles from the default location
func LoadProfiles() (*Config, error) {
	path, err := ProfilesPath()
	if err != nil {
		return nil, err
	}
	return LoadProfilesFromFile(path)
}

// LoadProfilesFromFile loads profiles from a specific file
func LoadProfilesFromFile(path string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveProfiles saves profiles to the default location
func SaveProfiles(config *Config) error {
	path, err := ProfilesPath()
	if err != nil {
		return err
	}
	return SaveProfilesToFile(config, path)
}

// SaveProfilesToFile writes profiles to path, creating its directory
func SaveProfilesToFile(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfig returns the built-in presets
func getDefaultConfig() *Config {
	return &Config{
		Profiles: []Profile{
			{
				Name:               "classic",
				AgentCount:         20,
				Width:              800,
				Height:             600,
				CommunicationRange: 100,
				BoundaryMargin:     Float64(20),
			},
			{
				Name:               "dense",
				AgentCount:         300,
				Width:              1600,
				Height:             1200,
				CommunicationRange: 80,
				BoundaryMargin:     Float64(20),
				GraphStrategy:      "grid",
			},
		},
	}
}
