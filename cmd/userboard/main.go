// Package main is the entry point for the userboard CLI.
//
// userboard can be run either as a library (SDK) or as a standalone binary
// with a YAML or TOML configuration file. This CLI provides the standalone
// binary approach.
//
// Usage:
//
//	userboard serve -c config.yaml    # Start the page
//	userboard validate -c config.yaml # Validate configuration
//	userboard demo                    # Run the store and transform demo
//	userboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "userboard",
	Short: "A live user list backed by an observable store",
	Long: `userboard serves a live user list page.

Users are fetched from a simulated dataset, a JSON API or a local file,
kept in an observable store and pushed to the browser over Server-Sent
Events as the state changes.

Quick start:
  1. Run: userboard serve
  2. Open http://localhost:8080 in your browser
  3. Click "Fetch Users", then "Transform Data"

Example config:
  port: 8080
  layout: table
  source:
    type: http
    url: https://api.example.com/users`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this userboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "userboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
