package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/reels/internal/app"
)

var (
	demoItems       int
	demoBrokenEvery int
	demoStallEvery  int
	demoMetricsAddr string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Scroll a synthetic feed in the terminal",
	Long: `Run the playback scheduler against a synthetic feed rendered as a
paged list in the terminal.

Examples:
  # A feed of 200 items, paged in as you scroll
  reels demo --items 200

  # Every 5th item fails to decode and every 7th stalls
  reels demo --broken-every 5 --stall-every 7

  # Expose Prometheus metrics while scrolling
  reels demo --metrics-addr 127.0.0.1:9464
`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().IntVar(&demoItems, "items", 100, "Items in the synthetic feed")
	demoCmd.Flags().IntVar(&demoBrokenEvery, "broken-every", 0, "Make every n-th item undecodable (0 = never)")
	demoCmd.Flags().IntVar(&demoStallEvery, "stall-every", 0, "Make every n-th item stall (0 = never)")
	demoCmd.Flags().StringVar(&demoMetricsAddr, "metrics-addr", "", "Serve /metrics on this address")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	if demoItems <= 0 {
		return fmt.Errorf("--items must be positive, got %d", demoItems)
	}
	if err := loadConfig(); err != nil {
		return err
	}
	if err := setupFileLogger(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Int("items", demoItems).Msg("demo starting")
	err := app.Run(ctx, app.Options{
		Config:      cfg,
		Logger:      logger,
		Total:       demoItems,
		BrokenEvery: demoBrokenEvery,
		StallEvery:  demoStallEvery,
		MetricsAddr: demoMetricsAddr,
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info().Msg("demo stopped")
	return nil
}
