// Camscan is an ONVIF camera discovery utility.
//
// It probes the local network over WS-Discovery, then enriches each
// responding camera over authenticated SOAP: device information, network
// interfaces, media profiles, and RTSP stream URIs. Results print to the
// terminal, stream to WebSocket subscribers, or render in a live TUI.
//
// Usage:
//
//	camscan [command] [flags]
//
// Running without arguments performs a scan.
// See 'camscan --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muldr/camscan/internal/logging"
	"github.com/muldr/camscan/internal/urls"
	"github.com/muldr/camscan/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "camscan",
	Short: "ONVIF Camera Discovery Utility",
	Long: `A utility for finding and inspecting ONVIF cameras on the local network.

Probes the network over WS-Discovery multicast, then fetches each camera's
capabilities, device information, media profiles, and RTSP stream URIs over
authenticated SOAP.

If no command is specified, a scan runs with default settings.

Getting started: ` + urls.GettingStarted,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel == "" {
			return nil
		}
		return logging.Initialize(logLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: scan when no subcommand provided
		return runScan(cmd, args)
	},
}

var logLevel string

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log verbosity: debug, info, warn, error (default silent)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("camscan %s (commit: %s)\n", version.Version, version.Commit)
	},
}
