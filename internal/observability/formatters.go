// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/rendering"
	"github.com/jonathan/cover-letter-agent/internal/retrieval"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewLines is the number of text lines shown in previews
	previewLines = 6
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the box interior, counting runes.
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		return truncate(line, width)
	}
	return line + strings.Repeat(" ", width-n)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

// wrap greedily breaks text into lines of at most width runes.
func wrap(text string, width int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

func preview(text string) string {
	lines := wrap(text, boxWidth-4)
	if len(lines) > previewLines {
		rest := len(lines) - previewLines
		lines = append(lines[:previewLines], fmt.Sprintf("... and %d more lines", rest))
	}
	return strings.Join(lines, "\n")
}

// PrintJobDescription outputs the size and opening of an extracted job description.
func (p *Printer) PrintJobDescription(url string, content *extraction.ExtractedContent) {
	if content == nil {
		return
	}

	var sb strings.Builder
	if url != "" {
		sb.WriteString(fmt.Sprintf("URL:      %s\n", url))
	}
	sb.WriteString(fmt.Sprintf("Length:   %d characters\n\n", content.Length))
	sb.WriteString(preview(content.Text))

	p.printBox("EXTRACTED JOB DESCRIPTION", sb.String())
}

// PrintJobMetadata outputs the title and company the prompt will use.
func (p *Printer) PrintJobMetadata(title, company string) {
	p.printBox("JOB METADATA", fmt.Sprintf("Role:     %s\nCompany:  %s", title, company))
}

// PrintRetrieval outputs the active index size and the retrieved context.
func (p *Printer) PrintRetrieval(stats retrieval.Stats, retrieved string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Documents: %d\n", stats.Documents))
	sb.WriteString(fmt.Sprintf("Chunks:    %d\n", stats.Chunks))
	if retrieved == "" {
		sb.WriteString("\nNo reference context retrieved")
	} else {
		sb.WriteString("\n")
		sb.WriteString(preview(retrieved))
	}

	p.printBox("REFERENCE CONTEXT", sb.String())
}

// PrintWarnings outputs non-fatal problems; nothing is printed when there are none.
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}

	var sb strings.Builder
	for i, w := range warnings {
		lines := wrap(w, boxWidth-6)
		for j, line := range lines {
			if j == 0 {
				sb.WriteString("⚠ " + line)
			} else {
				sb.WriteString("  " + line)
			}
			sb.WriteString("\n")
		}
		if i < len(warnings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("WARNINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLetterSummary outputs word and paragraph counts of a generated letter.
func (p *Printer) PrintLetterSummary(letter string) {
	words := len(strings.Fields(letter))
	paragraphs := len(rendering.Paragraphs(letter))

	status := "✅ within 250-400 words"
	if words < 250 || words > 400 {
		status = "⚠ outside 250-400 words"
	}

	p.printBox("COVER LETTER", fmt.Sprintf("Words:      %d\nParagraphs: %d\n%s", words, paragraphs, status))
}
