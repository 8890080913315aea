package main

import (
	"fmt"

	"github.com/aretw0/graft/internal/presentation/graph"
	"github.com/aretw0/graft/pkg/scenario"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [scenario.yaml]",
	Short: "Export the lifecycle graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the lifecycle phases and bridge
operations. Given a scenario, it plays it and highlights the phases visited.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var report *scenario.Report
		if len(args) == 1 {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			sc, err := scenario.LoadFile(args[0])
			if err != nil {
				return err
			}
			report, err = scenario.Run(cmd.Context(), sc, scenario.WithLogger(logger))
			if report == nil {
				return err
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(report))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
