package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"stravadump/pkg/auth"
	"stravadump/pkg/config"
	"stravadump/pkg/extractor"
	"stravadump/pkg/logger"
	"stravadump/pkg/storage"
	"stravadump/pkg/strava"
)

var (
	// Extract command flags
	extractName     string
	extractToken    string
	extractAccount  string
	extractOutput   string
	extractRPM      int
	extractPerPage  int
	extractStart    int
	extractMaxPages int
	extractResume   bool
	maxThrottleWait time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [year]",
	Short: "Extract athlete activities to local JSON page files",
	Long: `Extract the authenticated athlete's activities, one JSON file per API page.

With a year argument, only activities within that calendar year (UTC) are
fetched and the run directory is named after the year. Without one, the full
history is walked from the start page until the API returns an empty page.

Each page is written before the next is requested, so partial runs keep
their pages; use --resume (or --start-page) to continue a previous run.`,
	Example: `  # Extract all 2025 activities at the default 15 requests/minute
  stravadump extract 2025

  # Full history with an explicit token and a custom request budget
  stravadump extract --token $TOKEN --rpm 30

  # Continue an interrupted 2025 run past its last completed page
  stravadump extract 2025 --resume

  # A bounded test run
  stravadump extract 2025 --max-pages 2 --per-page 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractName, "name", "", "run name, used as directory and page file prefix")
	extractCmd.Flags().StringVar(&extractToken, "token", "", "Strava access token (overrides stored accounts and environment)")
	extractCmd.Flags().StringVarP(&extractAccount, "account", "a", "", "use specific stored account")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output base directory")
	extractCmd.Flags().IntVar(&extractRPM, "rpm", 0, "maximum requests per minute (default 15)")
	extractCmd.Flags().IntVar(&extractPerPage, "per-page", strava.DefaultPerPage, "activities per page (1-200)")
	extractCmd.Flags().IntVar(&extractStart, "start-page", 1, "first page to fetch")
	extractCmd.Flags().IntVar(&extractMaxPages, "max-pages", 0, "page cap for this run, 0 for unbounded")
	extractCmd.Flags().BoolVar(&extractResume, "resume", false, "start one page past the last completed page in the run directory")
	extractCmd.Flags().DurationVar(&maxThrottleWait, "max-throttle-wait", 0, "abort when cumulative throttle waiting exceeds this, 0 for no ceiling")
}

func runExtract(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if extractOutput != "" {
		flags["output"] = extractOutput
	}
	if extractRPM != 0 {
		flags["rpm"] = extractRPM
	}
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
	log := logger.GetLogger()

	var year int
	var window strava.Window
	runName := extractName
	if len(args) == 1 {
		year, err = strconv.Atoi(args[0])
		if err != nil || year < 1900 {
			return fmt.Errorf("invalid year: %s", args[0])
		}
		window = strava.YearWindow(year)
		if runName == "" {
			runName = args[0]
		}
	}

	token, err := resolveToken(extractToken, extractAccount, cfg)
	if err != nil {
		return err
	}

	outputDir := cfg.Output.BaseDirectory
	if runName != "" {
		outputDir = filepath.Join(outputDir, runName)
	}

	store, err := storage.NewStore(outputDir, extractName)
	if err != nil {
		return err
	}

	startPage := extractStart
	if extractResume {
		last, err := store.LastCompletedPage()
		if err != nil {
			return err
		}
		if last >= startPage {
			startPage = last + 1
			log.InfoWithFields("resuming past last completed page", map[string]interface{}{
				"last_completed": last,
				"start_page":     startPage,
			})
		}
	}

	client := strava.NewClient(cfg.Strava.BaseURL, cfg.Strava.RequestTimeout, log)
	engine := extractor.New(client, store, log,
		extractor.WithRetryAfterFallback(cfg.RateLimit.RetryAfterFallback))

	req := extractor.Request{
		Token:             token,
		Name:              extractName,
		Window:            window,
		Year:              year,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		PerPage:           extractPerPage,
		StartPage:         startPage,
		MaxPages:          extractMaxPages,
		MaxThrottleWait:   cfg.RateLimit.MaxThrottleWait,
	}
	if maxThrottleWait > 0 {
		req.MaxThrottleWait = maxThrottleWait
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := engine.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("Fetched %d page(s) into %s\n", result.Manifest.FetchedPages, result.OutputDir)
	return nil
}

// resolveToken picks the access token for a run: an explicit flag wins,
// then stored accounts, then the config/environment value.
func resolveToken(explicit, account string, cfg *config.Config) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if manager, err := auth.NewManager(); err == nil {
		if token, err := manager.Resolve("", account); err == nil {
			return token, nil
		}
	}

	if cfg.Strava.AccessToken != "" {
		return cfg.Strava.AccessToken, nil
	}

	return "", fmt.Errorf("no access token: use --token, 'stravadump auth login', or set STRAVA_ACCESS_TOKEN")
}
