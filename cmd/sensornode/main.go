// Package main is the entry point for the sensornode firmware agent: it runs
// the one-shot bootstrap sequence (vendor runtime patch linking, then the
// default logger install), brings up the WiFi access point, and serves the
// sensor HTTP API. The flash and monitor subcommands are host-side device
// tooling and never touch the bootstrap path.
package main

func main() {
	Execute()
}
