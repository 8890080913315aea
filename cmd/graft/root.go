package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/graft/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "graft",
	Short: "Graft bridges reactive lifecycle nodes into hosts that only know attach and detach",
	Long: `Graft plays host-side lifecycle scenarios against bridged nodes, and serves
a node host over HTTP with metrics and an optional Redis event journal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json); defaults to json when stderr is not a terminal")
}

// newLogger builds the command logger from the persistent flags.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	rawLevel, _ := cmd.Flags().GetString("log-level")
	rawFormat, _ := cmd.Flags().GetString("log-format")

	level, err := logging.ParseLevel(rawLevel)
	if err != nil {
		return nil, err
	}

	format := logging.FormatText
	if rawFormat == "" {
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			format = logging.FormatJSON
		}
	} else if format, err = logging.ParseFormat(rawFormat); err != nil {
		return nil, err
	}

	return logging.NewWithWriter(os.Stderr, level, format), nil
}
