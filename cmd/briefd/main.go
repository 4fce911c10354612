// briefd is the investors-daily-brief backend: a REST service and CLI for
// normalized company fundamentals, data-quality scoring, macro series, and
// SEC filings.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/markmullin/investors-daily-brief-v2-sub011/api"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/briefing"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/config"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/providers"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "briefd",
	Short: "Investors Daily Brief - fundamentals, data quality, and macro data",
	Long: `briefd serves normalized company fundamentals built from SEC EDGAR
XBRL facts (with FMP statement fallback), scored for data quality, plus
FRED macro series and EDGAR filings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is a development convenience; absence is normal.
		_ = godotenv.Load()

		var err error
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(financialsCmd)
	rootCmd.AddCommand(macroCmd)
	rootCmd.AddCommand(filingsCmd)
	rootCmd.AddCommand(providersCmd)
}

// newService builds the provider registry and service from the loaded
// config.
func newService() (*briefing.Service, error) {
	reg, err := providers.BuildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("build providers: %w", err)
	}
	logger := log.New(os.Stderr, "briefd ", log.LstdFlags)
	return briefing.NewService(reg, cfg, logger), nil
}

// printJSON renders command output the way the API would.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("briefd %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		api.Version = version

		logger := log.New(os.Stderr, "briefd ", log.LstdFlags)
		srv := api.NewServer(cfg, svc, logger)

		addr := cfg.API.Addr()
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			addr = fmt.Sprintf("%s:%d", cfg.API.Host, port)
		}
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "override the configured port")
}

// --- financials ---

var financialsCmd = &cobra.Command{
	Use:   "financials [ticker...]",
	Short: "Print normalized fundamentals for one or more tickers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		asJSON, _ := cmd.Flags().GetBool("json")

		if len(args) == 1 {
			result, err := svc.Financials(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(result)
			}
			printFinancials(result)
			return nil
		}

		results, err := svc.BatchFinancials(ctx, args)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(results)
		}
		for _, r := range results {
			if r.Error != "" {
				fmt.Printf("%-8s error: %s\n", r.Ticker, r.Error)
				continue
			}
			dq := r.Result.DataQuality
			fmt.Printf("%-8s quality %s (%.0f), %d metrics\n",
				r.Ticker, dq.Status, dq.OverallScore, len(r.Result.Financials))
		}
		return nil
	},
}

func init() {
	financialsCmd.Flags().Bool("json", false, "print full JSON instead of a summary")
}

// printFinancials renders a single result as a readable table.
func printFinancials(result *models.FundamentalsResult) {
	dq := result.DataQuality
	fmt.Printf("%s (%s)\n", result.Ticker, result.Source)
	fmt.Printf("quality: %s (score %.0f, completeness %.0f%%)\n\n",
		dq.Status, dq.OverallScore, dq.Completeness*100)

	metrics := make([]string, 0, len(result.Financials))
	for m := range result.Financials {
		metrics = append(metrics, string(m))
	}
	sort.Strings(metrics)

	for _, m := range metrics {
		obs := result.Financials[models.Metric(m)]
		period := "annual"
		if obs.IsQuarterly {
			period = "quarterly"
		}
		fmt.Printf("  %-22s %16.2f  %-9s %s (%.2f)\n",
			m, obs.Value, period, obs.Source, obs.Confidence)
	}

	for _, issue := range dq.Issues {
		fmt.Printf("\n  issue: %s", issue)
	}
	for _, warning := range dq.Warnings {
		fmt.Printf("\n  warning: %s", warning)
	}
	if len(dq.Issues)+len(dq.Warnings) > 0 {
		fmt.Println()
	}
}

// --- macro ---

var macroCmd = &cobra.Command{
	Use:   "macro [series...]",
	Short: "Print FRED macro series (defaults to the daily-brief set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		series := args
		if len(series) == 0 {
			series = []string{"GDP", "CPIAUCSL", "UNRATE", "DGS10", "FEDFUNDS"}
		}
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := svc.Macro(ctx, series, limit)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	macroCmd.Flags().Int("limit", 24, "observations per series")
}

// --- filings ---

var filingsCmd = &cobra.Command{
	Use:   "filings [ticker]",
	Short: "List recent SEC filings for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		limit, _ := cmd.Flags().GetInt("limit")
		filings, err := svc.Filings(ctx, args[0], limit)
		if err != nil {
			return err
		}
		return printJSON(filings)
	},
}

func init() {
	filingsCmd.Flags().Int("limit", 20, "maximum filings to list")
}

// --- providers ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show registered providers and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		fmt.Println("Registered providers:")
		for _, info := range svc.Registry().List() {
			fmt.Printf("  %-8s %s\n", info.Name, info.Description)
			fmt.Printf("  %-8s models: %d\n", "", len(info.Models))
		}

		fmt.Println("\nAPI keys:")
		for _, status := range config.CheckAPIKeys(cfg) {
			state := "not set"
			if status.IsSet {
				state = fmt.Sprintf("%s (%s)", status.Masked, status.Source)
			}
			fmt.Printf("  %-14s %s\n", status.Name, state)
		}
		return nil
	},
}
