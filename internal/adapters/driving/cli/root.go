// Package cli holds the cobra command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// configPath is the optional TOML config file location.
	configPath string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "hireflow",
	Short: "Recruiting pipeline backend with multi-provider scheduling",
	Long: `HireFlow schedules candidate interviews across Google, Microsoft, Zoom
and SMTP accounts: meeting links, calendar events and notification email,
with deterministic fallback when a provider is unavailable.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "hireflow.toml", "path to config file")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}
