package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stravadump",
	Short: "Bulk-extract Strava activity history to local JSON files",
	Long: `stravadump pulls an athlete's full activity history from the Strava API
and saves each page to a local JSON file, with a manifest per completed run.

It paces requests against a requests-per-minute budget, honors the server's
Retry-After signal on 429 responses, and persists every page durably before
moving on, so an interrupted run can be resumed from the last completed page.

Authentication uses a pre-obtained access token, supplied via --token, a
stored account ('stravadump auth login'), or the STRAVA_ACCESS_TOKEN
environment variable (a .env file is honored).`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
