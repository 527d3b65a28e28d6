package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/reels/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay TRACE...",
	Short: "Replay scripted scroll traces without a screen",
	Long: `Replay YAML traces against the scheduler. Each step of a trace is one
tick; the report lists the active item, playback state and scroll commands
after every tick, then the final counters.

Examples:
  reels replay internal/replay/testdata/basic.yaml
  reels replay --log-level debug traces/*.yaml
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	setupConsoleLogger()

	runner := replay.NewRunner(cfg.GetSchedulerConfig(), logger)
	out := cmd.OutOrStdout()
	for i, path := range args {
		trace, err := replay.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		report, err := runner.Run(cmd.Context(), trace)
		if err != nil {
			return fmt.Errorf("replay %s: %w", path, err)
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := report.Write(out); err != nil {
			return err
		}
	}
	return nil
}
