package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/reels/internal/config"
	"github.com/llehouerou/reels/internal/logging"
)

var (
	logger  zerolog.Logger
	cfg     *config.Config
	logFile io.Closer

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "reels",
	Short: "Reels - active-item playback for a paged video feed",
	Long: "Reels decides which item of a vertically paged feed is active and " +
		"drives its playback. It ships a terminal demo and a headless trace replayer.",
	SilenceUsage: true,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return nil
}

// setupFileLogger logs to the configured file. The terminal is the screen
// while the demo runs.
func setupFileLogger() error {
	f, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = f
	logger = logging.Setup(cfg.LogLevel(), f)
	return nil
}

// setupConsoleLogger logs to stderr in a readable form.
func setupConsoleLogger() {
	logger = logging.Setup(cfg.LogLevel(), logging.Console(os.Stderr))
}
