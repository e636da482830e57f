package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// NormalizeText makes uploaded text safe to chunk: invalid UTF-8 is replaced,
// line endings become LF, trailing spaces are dropped and runs of blank lines
// shrink to one. Paragraph breaks survive so the splitter can use them.
func NormalizeText(content string) string {
	if content == "" {
		return ""
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v")
	}

	content = strings.Join(lines, "\n")
	content = excessBlankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
