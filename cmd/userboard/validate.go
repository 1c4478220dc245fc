package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/userboard/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a userboard configuration file without starting the server.

This command parses the YAML or TOML, applies environment overrides,
expands environment variables, and validates all fields. It's useful for
CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  userboard validate -c config.yaml
  userboard validate --config /etc/userboard/config.toml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// building the source catches problems only visible on disk, such as a
	// missing data file
	if _, err := config.BuildSource(cfg.Source); err != nil {
		return fmt.Errorf("invalid config: source: %w", err)
	}

	refresh := "manual"
	if cfg.RefreshInterval != 0 {
		refresh = cfg.RefreshInterval.Duration().String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:    %d\n", cfg.Port)
	fmt.Fprintf(out, "  Layout:  %s\n", cfg.Layout)
	fmt.Fprintf(out, "  Refresh: %s\n", refresh)
	fmt.Fprintf(out, "  Source:  %s\n", describeSource(cfg.Source))

	return nil
}

// describeSource summarises the source section for humans.
func describeSource(sc config.SourceConfig) string {
	switch sc.Type {
	case config.SourceHTTP:
		return fmt.Sprintf("http %s", sc.URL)
	case config.SourceFile:
		return fmt.Sprintf("file %s", sc.Path)
	default:
		if sc.Users != nil {
			return fmt.Sprintf("simulated (%d users)", len(sc.Users))
		}
		return "simulated (sample users)"
	}
}
