package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ytsubs "github.com/xybydy/go-ytsubs"
	"github.com/xybydy/go-ytsubs/pkg/youtube"
)

// version is set at build time via ldflags.
var version = "1.0.0"

// Global flags
var (
	flagConfig      string
	flagLogLevel    string
	flagLogEncoding string
	flagLang        string
)

// Loaded in PersistentPreRunE (merged: defaults < config file < env < flags).
var (
	cfg    ytsubs.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ytsubs",
	Short: "YouTube transcripts as plain text",
	Long: `ytsubs extracts the video ID from a YouTube URL and fetches the video's transcript.
Run "ytsubs serve" for the HTTP API or use "ytsubs text" and "ytsubs langs" directly.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "ytsubs.toml", "Path to a TOML config file (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug | info | warn | error")
	rootCmd.PersistentFlags().StringVar(&flagLogEncoding, "log-encoding", "", "Log encoding: console | json")
	rootCmd.PersistentFlags().StringVarP(&flagLang, "lang", "l", "", "Transcript language (default from config, \"uk\")")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(langsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration and creates the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = ytsubs.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogEncoding != "" {
		cfg.LogEncoding = flagLogEncoding
	}
	if flagLang != "" {
		cfg.DefaultLang = flagLang
	}
	applyServeFlags(cmd)

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = ytsubs.NewLogger(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	return nil
}

func newFetcher() *ytsubs.Fetcher {
	client := youtube.NewClient(cfg.ClientOptions(), logger)
	return ytsubs.NewFetcher(client, ytsubs.FetcherOptions{Timeout: cfg.FetchTimeout}, logger)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ytsubs", version)
	},
}
