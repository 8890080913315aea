package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/graft/internal/presentation/tui"
	"github.com/aretw0/graft/pkg/scenario"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>...",
	Short: "Play lifecycle scenarios against bridged nodes",
	Long: `Loads each scenario file, plays its steps through a graft host and checks
every expectation. The command fails if any scenario fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet, _ := cmd.Flags().GetBool("quiet")

		out := cmd.OutOrStdout()
		interactive := !jsonMode && term.IsTerminal(int(os.Stdout.Fd()))
		width := 0
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
		render := tui.NewRenderer(width)

		if interactive && !quiet {
			tui.PrintBanner(out)
		}

		failed := 0
		for _, path := range args {
			sc, err := scenario.LoadFile(path)
			if err != nil {
				return err
			}

			report, runErr := scenario.Run(cmd.Context(), sc, scenario.WithLogger(logger))
			if report == nil {
				return runErr
			}
			if runErr != nil {
				failed++
			}

			switch {
			case jsonMode:
				if err := json.NewEncoder(out).Encode(report); err != nil {
					return err
				}
			case quiet:
				fmt.Fprintln(out, tui.Verdict(report))
			default:
				md := tui.ReportMarkdown(report)
				if interactive {
					if rendered, err := render(md); err == nil {
						md = rendered
					}
				}
				fmt.Fprint(out, md)
				fmt.Fprintln(out, tui.Verdict(report))
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print one JSON report per scenario")
	runCmd.Flags().BoolP("quiet", "q", false, "Print only the verdict of each scenario")
}
