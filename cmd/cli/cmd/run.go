package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/swarm-canvas/pkg/config"
	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/simulation"
	"github.com/picogrid/swarm-canvas/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/swarm-canvas/cmd/swarm-canvas"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation interactively or with specified parameters.

Parameter values are taken from --set, then the --params file, then the
selected profile, then SWARM_<PARAMETER> environment variables. Anything
still missing is prompted for on a terminal or falls back to its default.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().StringToString("set", nil, "parameter overrides (name=value,...)")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simName, err := selectSimulation(cmd)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	simConfig, err := simulation.DefaultRegistry.Config(simName)
	if err != nil {
		return fmt.Errorf("simulation configuration not found for %s: %w", simName, err)
	}

	provided, err := collectParameters(cmd)
	if err != nil {
		return err
	}

	params, err := utils.PromptForParameters(simConfig.Parameters, provided)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		logger.Warn("Received interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
		}
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	if err := sim.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

// collectParameters merges the profile, the --params file and --set values;
// later sources win
func collectParameters(cmd *cobra.Command) (map[string]interface{}, error) {
	provided := make(map[string]interface{})

	profile, err := selectedProfile()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		logger.Infof("Using profile %s", profile.Name)
		for k, v := range profile.Params() {
			provided[k] = v
		}
	}

	if path, _ := cmd.Flags().GetString("params"); path != "" {
		fileParams, err := utils.LoadParamsFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileParams {
			provided[k] = v
		}
	}

	overrides, _ := cmd.Flags().GetStringToString("set")
	for k, v := range overrides {
		provided[k] = v
	}
	return provided, nil
}

// selectedProfile resolves --profile / SWARM_PROFILE, falling back to the
// profile marked as selected in profiles.yaml
func selectedProfile() (*config.Profile, error) {
	name := viper.GetString("profile")

	cfg, err := config.LoadProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	if name == "" {
		name = cfg.Selected
	}
	if name == "" {
		return nil, nil
	}

	p, ok := cfg.Find(name)
	if !ok {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return &p, nil
}

func selectSimulation(cmd *cobra.Command) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	simInfos, err := utils.DiscoverSimulations(simulation.DefaultRegistry)
	if err != nil {
		return "", err
	}

	if len(simInfos) == 0 {
		return "", fmt.Errorf("no simulations found")
	}
	if len(simInfos) == 1 || !utils.Interactive() {
		return simInfos[0].Name, nil
	}

	// Build options for selection
	options := make([]string, len(simInfos))
	descriptions := make(map[string]string)

	for i, info := range simInfos {
		options[i] = info.Name
		descriptions[info.Name] = info.Config.Description
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
