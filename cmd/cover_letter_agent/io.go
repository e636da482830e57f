package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/cover-letter-agent/internal/ingestion"
)

// readFile loads a local file for ingestion.
func readFile(path string) (ingestion.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingestion.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ingestion.File{Name: filepath.Base(path), Data: data}, nil
}

// readDocumentText extracts the plain text of a local PDF or TXT file.
func readDocumentText(ctx context.Context, path string) (string, error) {
	f, err := readFile(path)
	if err != nil {
		return "", err
	}
	return ingestion.ExtractText(ctx, f)
}

// writeText writes text to path, or to stdout when path is empty.
func writeText(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writePDF writes a rendered PDF to path.
func writePDF(path string, pdf []byte) error {
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
