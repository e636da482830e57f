package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cover-letter-agent/internal/extraction"
	"github.com/jonathan/cover-letter-agent/internal/retrieval"
)

func TestPrintJobDescription(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	text := strings.Repeat("Provide compassionate patient care in a busy ICU. ", 30)
	p.PrintJobDescription("https://example.com/jobs/1", &extraction.ExtractedContent{Text: text, Length: utf8.RuneCountInString(text)})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED JOB DESCRIPTION")
	assert.Contains(t, output, "https://example.com/jobs/1")
	assert.Contains(t, output, "1500 characters")
	assert.Contains(t, output, "Provide compassionate")
	assert.Contains(t, output, "more lines")
}

func TestPrintJobDescription_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobDescription("", nil)
	assert.Empty(t, buf.String())
}

func TestPrintJobMetadata(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobMetadata("Charge Nurse", "Acme Health")
	output := buf.String()

	assert.Contains(t, output, "JOB METADATA")
	assert.Contains(t, output, "Charge Nurse")
	assert.Contains(t, output, "Acme Health")
}

func TestPrintRetrieval(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRetrieval(retrieval.Stats{Documents: 2, Chunks: 7}, "Open with a specific story.")
	output := buf.String()
	assert.Contains(t, output, "Documents: 2")
	assert.Contains(t, output, "Chunks:    7")
	assert.Contains(t, output, "Open with a specific story.")

	buf.Reset()
	p.PrintRetrieval(retrieval.Stats{}, "")
	assert.Contains(t, buf.String(), "No reference context retrieved")
}

func TestPrintWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWarnings(nil)
	assert.Empty(t, buf.String())

	p.PrintWarnings([]string{"Could not extract job information from this site: HTTP status 500. Please copy and paste the job description manually."})
	output := buf.String()
	assert.Contains(t, output, "WARNINGS")
	assert.Contains(t, output, "⚠ Could not extract")
}

func TestPrintLetterSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLetterSummary("Dear Hiring Manager,\n\nShort letter.")
	output := buf.String()
	assert.Contains(t, output, "Words:      5")
	assert.Contains(t, output, "Paragraphs: 2")
	assert.Contains(t, output, "outside 250-400 words")

	buf.Reset()
	p.PrintLetterSummary(strings.Repeat("word ", 300))
	assert.Contains(t, buf.String(), "within 250-400 words")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobMetadata(strings.Repeat("Senior Staff Principal Nurse Practitioner ", 3), "Ünïcödé Health Systems")
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 7))
	assert.Nil(t, wrap("   ", 10))
	assert.Equal(t, []string{"supercalifragilistic"}, wrap("supercalifragilistic", 5))
}
