package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"esphub/sensornode/internal/flash"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Tail a node's serial console",
	Long: `Monitor opens the node's serial port and copies its console output
to stdout until interrupted.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&flashPort, "port", "", "serial port (default from config)")
	monitorCmd.Flags().IntVar(&flashBaud, "baud", 0, "baud rate (default from config)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	portName, baud := serialParams()
	port, err := flash.OpenPort(portName, baud)
	if err != nil {
		return err
	}

	// Closing the port unblocks the copy loop when the user interrupts.
	go func() {
		<-ctx.Done()
		port.Close() //nolint:errcheck
	}()

	fmt.Fprintf(os.Stderr, "monitoring %s @ %d baud (Ctrl-C to exit)\n", portName, baud)

	if _, err := io.Copy(os.Stdout, port); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading serial port: %w", err)
	}
	return nil
}
