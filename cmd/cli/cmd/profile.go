package cmd

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/swarm-canvas/pkg/config"
	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage geometry profiles",
	Long:  `Manage named engine geometry presets stored in $HOME/.swarm-sim/profiles.yaml`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE:  listProfiles,
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new profile",
	RunE:  addProfile,
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a profile",
	RunE:  removeProfile,
}

var profileUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Select the profile applied when --profile is not given",
	Args:  cobra.ExactArgs(1),
	RunE:  useProfile,
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileUseCmd)
}

func listProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured")
		return nil
	}

	table := logger.NewTable("NAME", "AGENTS", "CANVAS", "RANGE", "MARGIN", "STRATEGY", "SELECTED")
	for _, p := range cfg.Profiles {
		selected := ""
		if p.Name == cfg.Selected {
			selected = "*"
		}
		strategy := p.GraphStrategy
		if strategy == "" {
			strategy = string(swarm.GraphAuto)
		}
		margin := "default"
		if p.BoundaryMargin != nil {
			margin = fmt.Sprintf("%g", *p.BoundaryMargin)
		}
		table.AddRow(
			p.Name,
			strconv.Itoa(p.AgentCount),
			fmt.Sprintf("%gx%g", p.Width, p.Height),
			fmt.Sprintf("%g", p.CommunicationRange),
			margin,
			strategy,
			selected,
		)
	}
	table.Fprint(cmd.OutOrStdout())
	return nil
}

func positiveNumber(val interface{}) error {
	f, err := strconv.ParseFloat(fmt.Sprintf("%v", val), 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func addProfile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	answers := struct {
		Name     string
		Agents   string
		Width    string
		Height   string
		Range    string
		Margin   string
		Strategy string
	}{}

	strategies := make([]string, len(swarm.GraphStrategies))
	for i, s := range swarm.GraphStrategies {
		strategies[i] = string(s)
	}

	questions := []*survey.Question{
		{Name: "name", Prompt: &survey.Input{Message: "Profile name:"}, Validate: survey.Required},
		{Name: "agents", Prompt: &survey.Input{Message: "Number of drones:", Default: strconv.Itoa(swarm.DefaultAgentCount)}, Validate: positiveNumber},
		{Name: "width", Prompt: &survey.Input{Message: "Canvas width:", Default: fmt.Sprintf("%g", swarm.DefaultWidth)}, Validate: positiveNumber},
		{Name: "height", Prompt: &survey.Input{Message: "Canvas height:", Default: fmt.Sprintf("%g", swarm.DefaultHeight)}, Validate: positiveNumber},
		{Name: "range", Prompt: &survey.Input{Message: "Communication range:", Default: fmt.Sprintf("%g", swarm.DefaultCommunicationRange)}, Validate: positiveNumber},
		{Name: "margin", Prompt: &survey.Input{Message: "Boundary margin:", Default: fmt.Sprintf("%g", swarm.DefaultBoundaryMargin)}},
		{Name: "strategy", Prompt: &survey.Select{Message: "Graph strategy:", Options: strategies, Default: string(swarm.GraphAuto)}},
	}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	profile := config.Profile{Name: answers.Name, GraphStrategy: answers.Strategy}
	profile.AgentCount, _ = strconv.Atoi(answers.Agents)
	profile.Width, _ = strconv.ParseFloat(answers.Width, 64)
	profile.Height, _ = strconv.ParseFloat(answers.Height, 64)
	profile.CommunicationRange, _ = strconv.ParseFloat(answers.Range, 64)
	margin, _ := strconv.ParseFloat(answers.Margin, 64)
	profile.BoundaryMargin = config.Float64(margin)

	// Reject geometry the engine would refuse before it is saved
	engineCfg := swarm.DefaultConfig()
	engineCfg.AgentCount = profile.AgentCount
	engineCfg.Width, engineCfg.Height = profile.Width, profile.Height
	engineCfg.CommunicationRange = profile.CommunicationRange
	engineCfg.BoundaryMargin = margin
	engineCfg.GraphStrategy = swarm.GraphStrategy(profile.GraphStrategy)
	if err := engineCfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Add(profile); err != nil {
		return err
	}

	if err := config.SaveProfiles(cfg); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	logger.Successf("Profile %s added successfully", profile.Name)
	return nil
}

func removeProfile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles to remove")
		return nil
	}

	names := make([]string, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		names[i] = p.Name
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select profile to remove:",
		Options: names,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return err
	}

	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("Removal cancelled")
		return nil
	}

	if err := cfg.Remove(selected); err != nil {
		return err
	}

	if err := config.SaveProfiles(cfg); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	logger.Successf("Profile %s removed successfully", selected)
	return nil
}

func useProfile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if _, ok := cfg.Find(args[0]); !ok {
		return fmt.Errorf("profile %s not found", args[0])
	}
	cfg.Selected = args[0]

	if err := config.SaveProfiles(cfg); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	logger.Successf("Profile %s selected", args[0])
	return nil
}
