package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"esphub/sensornode/internal/config"
)

var (
	cfgFile  string
	logLevel string

	// cfg is populated by PersistentPreRunE and shared with all subcommands.
	cfg *config.Config

	// app holds all wired dependencies; populated by PersistentPreRunE.
	app *AppContext
)

var rootCmd = &cobra.Command{
	Use:   "sensornode",
	Short: "ESP32-S3 sensor node agent",
	Long: `sensornode runs the node firmware: a strict two-step bootstrap
(vendor runtime patch linking, then default logger install) followed by the
WiFi access point, the sensor updater, and the HTTP API.

The flash and monitor subcommands are host-side tooling for programming and
observing a node over its serial port.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// PersistentPreRunE only parses configuration and wires dependencies.
	// It must not log and must not touch the HAL: the bootstrap sequence in
	// each command's RunE is the first thing allowed to do either.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// --log-level flag takes precedence over value in config file.
		if cmd.Flags().Changed("log-level") {
			cfg.Telemetry.LogLevel = logLevel
		}

		app, err = buildAppContext(cfg)
		if err != nil {
			return fmt.Errorf("building app context: %w", err)
		}

		return nil
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(flashCmd)
	rootCmd.AddCommand(monitorCmd)
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
