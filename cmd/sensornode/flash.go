package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"esphub/sensornode/internal/flash"
)

var (
	flashProfile string
	flashPort    string
	flashBaud    int
)

var flashCmd = &cobra.Command{
	Use:   "flash [image]",
	Short: "Program a firmware image over the serial bootloader",
	Long: `Flash writes a firmware image (.hex or .bin) to a node over its
serial bootloader. Without an explicit image argument the path is derived
from the build profile: build/sensornode-<profile>.bin. The release profile
is the default and is what the size-optimized build produces.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFlash,
}

func init() {
	flashCmd.Flags().StringVar(&flashProfile, "profile", "release", "build profile (debug, release)")
	flashCmd.Flags().StringVar(&flashPort, "port", "", "serial port (default from config)")
	flashCmd.Flags().IntVar(&flashBaud, "baud", 0, "baud rate (default from config)")
}

func runFlash(cmd *cobra.Command, args []string) error {
	if flashProfile != "debug" && flashProfile != "release" {
		return fmt.Errorf("unknown profile %q (want debug or release)", flashProfile)
	}

	imagePath := fmt.Sprintf("build/sensornode-%s.bin", flashProfile)
	if len(args) == 1 {
		imagePath = args[0]
	}

	segments, err := flash.LoadImage(imagePath)
	if err != nil {
		return err
	}

	portName, baud := serialParams()
	port, err := flash.OpenPort(portName, baud)
	if err != nil {
		return err
	}
	defer port.Close() //nolint:errcheck

	fmt.Printf("flashing %s via %s @ %d baud\n", imagePath, portName, baud)

	p := flash.NewProgrammer(port)
	p.Progress = func(written, total int) {
		fmt.Printf("\r%d/%d bytes", written, total)
	}

	if err := p.Program(segments); err != nil {
		fmt.Println()
		return fmt.Errorf("flashing %s: %w", imagePath, err)
	}

	fmt.Println("\ndone")
	return nil
}

// serialParams resolves port name and baud rate from flags, falling back to
// the config file defaults.
func serialParams() (string, int) {
	portName := cfg.Flash.Port
	if flashPort != "" {
		portName = flashPort
	}
	baud := cfg.Flash.Baud
	if flashBaud != 0 {
		baud = flashBaud
	}
	return portName, baud
}
