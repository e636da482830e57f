package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/observability"
)

var extractJobCmd = &cobra.Command{
	Use:   "extract-job",
	Short: "Fetch and clean a job description from a URL",
	Long: "Fetch a job posting with a static HTTP request, falling back to a headless browser for " +
		"JavaScript-heavy sites, and print the cleaned description.",
	RunE: runExtractJob,
}

var (
	extractURL string
	extractOut string
)

func init() {
	extractJobCmd.Flags().StringVarP(&extractURL, "url", "u", "", "Job posting URL (required)")
	extractJobCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Write the description to this file instead of stdout")

	_ = extractJobCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(extractJobCmd)
}

func runExtractJob(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	content, err := newExtractor(appConfig, appLogger).Extract(ctx, extractURL)
	if err != nil {
		return fmt.Errorf("failed to extract job description: %w", err)
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintJobDescription(extractURL, content)
	}
	return writeText(cmd.OutOrStdout(), extractOut, content.Text)
}
