package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/coverletter"
	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/observability"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter",
	Long: "Generate a cover letter from a resume (PDF or TXT) and a job posting given as a URL or a " +
		"text file. Example letters from the static content directory and --context-file are used as " +
		"style context.",
	RunE: runGenerate,
}

var (
	genResume       string
	genJobURL       string
	genJobFile      string
	genTitle        string
	genCompany      string
	genContext      string
	genContextFiles []string
	genStaticDir    string
	genSystemFile   string
	genOut          string
	genPDF          string
)

func init() {
	generateCmd.Flags().StringVarP(&genResume, "resume", "r", "", "Path to resume, PDF or TXT (required)")
	generateCmd.Flags().StringVarP(&genJobURL, "job-url", "u", "", "Job posting URL")
	generateCmd.Flags().StringVarP(&genJobFile, "job-file", "j", "", "Path to a job description, PDF or TXT")
	generateCmd.Flags().StringVar(&genTitle, "title", "", "Job title (derived from the posting when empty)")
	generateCmd.Flags().StringVar(&genCompany, "company", "", "Company name (derived from the posting when empty)")
	generateCmd.Flags().StringVar(&genContext, "context", "", "Additional context for the letter")
	generateCmd.Flags().StringSliceVar(&genContextFiles, "context-file", nil, "Reference letters or notes, PDF or TXT (repeatable)")
	generateCmd.Flags().StringVar(&genStaticDir, "static-dir", "", "Static reference directory (defaults to config static_content_dir)")
	generateCmd.Flags().StringVar(&genSystemFile, "system-file", "", "Replace the built-in system instructions with this file")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Write the letter to this file instead of stdout")
	generateCmd.Flags().StringVar(&genPDF, "pdf", "", "Also render the letter to this PDF file")

	_ = generateCmd.MarkFlagRequired("resume")
	generateCmd.MarkFlagsMutuallyExclusive("job-url", "job-file")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	resume, err := readDocumentText(ctx, genResume)
	if err != nil {
		return err
	}

	var jobDescription string
	if genJobFile != "" {
		if jobDescription, err = readDocumentText(ctx, genJobFile); err != nil {
			return err
		}
	}

	var systemInstructions string
	if genSystemFile != "" {
		if systemInstructions, err = readDocumentText(ctx, genSystemFile); err != nil {
			return err
		}
	}

	session, err := newSession(ctx, appConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	loadStaticContent(ctx, session, appConfig, genStaticDir, appLogger)

	if len(genContextFiles) > 0 && appConfig.APIKey != "" {
		files := make([]ingestion.File, 0, len(genContextFiles))
		for _, path := range genContextFiles {
			f, err := readFile(path)
			if err != nil {
				return err
			}
			files = append(files, f)
		}
		if _, err := session.LoadContextFiles(ctx, files); err != nil {
			return fmt.Errorf("failed to load context files: %w", err)
		}
	}

	out, err := session.Generate(ctx, coverletter.GenerateInput{
		ResumeText:         resume,
		JobDescription:     jobDescription,
		JobURL:             genJobURL,
		AdditionalContext:  genContext,
		JobTitle:           genTitle,
		CompanyName:        genCompany,
		SystemInstructions: strings.TrimSpace(systemInstructions),
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	printer.PrintWarnings(out.Warnings)
	if verbose {
		printer.PrintJobMetadata(out.JobTitle, out.CompanyName)
		printer.PrintRetrieval(session.Stats(), out.RetrievedContext)
		printer.PrintLetterSummary(out.CoverLetter)
	}

	if err := writeText(cmd.OutOrStdout(), genOut, out.CoverLetter); err != nil {
		return err
	}
	if genPDF != "" {
		pdf, err := session.RenderPDF(ctx, out.CoverLetter)
		if err != nil {
			return err
		}
		return writePDF(genPDF, pdf)
	}
	return nil
}
