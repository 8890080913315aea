package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/graft"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of graft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "graft version %s\n", strings.TrimSpace(graft.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
