package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/observability"
)

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Revise an existing cover letter",
	Long: "Revise a cover letter following the given instructions, or apply the default revision " +
		"(stronger hook, concrete achievements, company fit, confident close, concision).",
	RunE: runImprove,
}

var (
	improveLetter       string
	improveText         string
	improveInstructions string
	improveOut          string
	improvePDF          string
)

func init() {
	improveCmd.Flags().StringVarP(&improveLetter, "letter", "l", "", "Path to the cover letter, PDF or TXT")
	improveCmd.Flags().StringVarP(&improveText, "text", "t", "", "Cover letter text")
	improveCmd.Flags().StringVarP(&improveInstructions, "instructions", "i", "", "Improvement instructions")
	improveCmd.Flags().StringVarP(&improveOut, "out", "o", "", "Write the letter to this file instead of stdout")
	improveCmd.Flags().StringVar(&improvePDF, "pdf", "", "Also render the letter to this PDF file")

	improveCmd.MarkFlagsMutuallyExclusive("letter", "text")
	improveCmd.MarkFlagsOneRequired("letter", "text")

	rootCmd.AddCommand(improveCmd)
}

func runImprove(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	letter := improveText
	if improveLetter != "" {
		var err error
		if letter, err = readDocumentText(ctx, improveLetter); err != nil {
			return err
		}
	}

	session, err := newSession(ctx, appConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	improved, err := session.Improve(ctx, letter, improveInstructions)
	if err != nil {
		return err
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintLetterSummary(improved)
	}
	if err := writeText(cmd.OutOrStdout(), improveOut, improved); err != nil {
		return err
	}
	if improvePDF != "" {
		pdf, err := session.RenderPDF(ctx, improved)
		if err != nil {
			return err
		}
		return writePDF(improvePDF, pdf)
	}
	return nil
}
