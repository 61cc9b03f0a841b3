package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"stravadump/pkg/config"
	"stravadump/pkg/export"
	"stravadump/pkg/logger"
)

var exportSourceCol string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <input> [output]",
	Short: "Flatten extracted JSON pages into a CSV file",
	Long: `Flatten one page file or a whole run directory of page files into CSV.

Nested objects become parent_child columns, lists of scalars become indexed
columns, and mixed lists are embedded as JSON strings. When exporting a
directory, all pages merge into one CSV and meta.json is skipped.`,
	Example: `  # One page file, written next to it as page_1.csv
  stravadump export data/strava/2025/page_1.json

  # A whole run, merged, with a column naming each row's source file
  stravadump export data/strava/2025 --source-col source_file

  # Explicit output path
  stravadump export data/strava/2025 activities_2025.csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := make(map[string]interface{})
		if logLevel != "" {
			flags["log-level"] = logLevel
		}
		cfg, err := config.Load(configFile, flags)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.Initialize(&cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		output := ""
		if len(args) == 2 {
			output = args[1]
		}

		converter := export.NewConverter(export.Options{SourceColumn: exportSourceCol}, logger.GetLogger())
		rows, path, err := converter.Convert(args[0], output)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Wrote %d row(s) to %s\n", rows, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSourceCol, "source-col", "", "add a column with the source JSON filename")
}
