package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/picogrid/swarm-canvas/pkg/config"
)

func TestListShowsRegisteredSimulations(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"list", "--params", "--no-color"})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"swarm-canvas", "visualization", "communication_range", "graph_strategy"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestCollectParametersPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	profiles := &config.Config{Selected: "wide"}
	_ = profiles.Add(config.Profile{Name: "wide", AgentCount: 40, Width: 1200, Height: 400})
	if err := config.SaveProfilesToFile(profiles, filepath.Join(home, config.Dir, "profiles.yaml")); err != nil {
		t.Fatal(err)
	}

	paramsFile := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(paramsFile, []byte("agent_count: 60\nrenderer: none\n"), 0644); err != nil {
		t.Fatal(err)
	}

	viper.Set("profile", "")
	defer viper.Set("profile", "")

	cmd := runCmd
	if err := cmd.Flags().Set("params", paramsFile); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("set", "renderer=png"); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = cmd.Flags().Set("params", "")
	}()

	params, err := collectParameters(cmd)
	if err != nil {
		t.Fatalf("collectParameters failed: %v", err)
	}

	if params["width"] != 1200.0 {
		t.Errorf("Expected width from profile, got %v", params["width"])
	}
	if params["agent_count"] != 60 {
		t.Errorf("Expected params file to override profile, got %v", params["agent_count"])
	}
	if params["renderer"] != "png" {
		t.Errorf("Expected --set to override params file, got %v", params["renderer"])
	}
}

func TestUnknownProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	viper.Set("profile", "nope")
	defer viper.Set("profile", "")

	if _, err := selectedProfile(); err == nil {
		t.Error("Expected error for unknown profile")
	}
}
