package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"esphub/sensornode/internal/boot"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run the one-shot boot sequence and exit",
	Long: `Bootstrap executes the firmware startup protocol without starting
the application: runtime patch linking first, then the default logger
install. It prints a JSON result to stdout and exits 0 on success or
non-zero on failure. Useful for board bring-up.`,
	RunE: runBootstrap,
}

// bootResult is the JSON shape printed to stdout.
type bootResult struct {
	Status string `json:"status"` // "ok" or "error"
	State  string `json:"state"`  // bootstrap state reached
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	err := app.seq.Run()

	result := bootResult{Status: "ok", State: app.seq.State().String()}
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()

		var bootErr *boot.Error
		if errors.As(err, &bootErr) {
			result.Kind = bootErr.Kind.String()
		}

		printBootResult(result)
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	printBootResult(result)
	slog.Info("bootstrap completed successfully", "state", result.State)
	return nil
}

func printBootResult(result bootResult) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		// Fallback to plain text if JSON encoding somehow fails.
		fmt.Fprintf(os.Stdout, `{"status":%q}`+"\n", result.Status)
	}
}
