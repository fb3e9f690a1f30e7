package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/simulation"
	"github.com/picogrid/swarm-canvas/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available simulations",
	Long:  `List all available simulations with their descriptions`,
	RunE:  listSimulations,
}

func init() {
	listCmd.Flags().BoolP("params", "p", false, "show each simulation's parameters")
}

func listSimulations(cmd *cobra.Command, args []string) error {
	simInfos, err := utils.DiscoverSimulations(simulation.DefaultRegistry)
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	if len(simInfos) == 0 {
		fmt.Println("No simulations found")
		return nil
	}

	table := logger.NewTable("NAME", "VERSION", "CATEGORY", "DESCRIPTION")
	for _, info := range simInfos {
		table.AddRow(info.Name, info.Config.Version, info.Config.Category, info.Config.Description)
	}
	table.Fprint(cmd.OutOrStdout())

	showParams, _ := cmd.Flags().GetBool("params")
	if !showParams {
		return nil
	}

	for _, info := range simInfos {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s parameters:\n", info.Name)
		params := logger.NewTable("NAME", "TYPE", "DEFAULT", "DESCRIPTION")
		for _, p := range info.Config.Parameters {
			def := ""
			if p.Default != nil {
				def = fmt.Sprintf("%v", p.Default)
			}
			params.AddRow(p.Name, p.Type, def, p.Description)
		}
		params.Fprint(cmd.OutOrStdout())
	}
	return nil
}
