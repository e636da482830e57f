// Package main provides the cover letter agent command line and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/config"
	"github.com/jonathan/cover-letter-agent/internal/logger"
)

var (
	configPath string
	verbose    bool

	// Set by the root command before any subcommand runs.
	appConfig *config.Config
	appLogger *zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cover_letter_agent",
	Short: "Cover letter generator",
	Long: "Cover Letter Agent writes and revises tailored cover letters from a resume and a job posting, " +
		"using example letters as style context.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress and debug logs")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	appConfig = cfg
	appLogger = logger.Init(cfg.Log)
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
