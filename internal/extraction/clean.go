// Package extraction turns a job posting URL into cleaned job description text.
// The Orchestrator runs the fetch strategies in site-specific order and the Cleaner
// filters whatever the first successful strategy returns.
package extraction

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/cover-letter-agent/internal/fetch"
)

// Content length policy, in characters.
const (
	MinContentChars         = 100
	MaxJobDescriptionLength = 3000
)

// ExtractedContent is cleaned job description text within the length policy.
type ExtractedContent struct {
	Text   string
	Length int
}

// boilerplate is removed case-insensitively after whitespace is collapsed.
var boilerplate = []string{
	"cookie",
	"privacy policy",
	"terms of service",
	"sign in",
	"log in",
	"create account",
	"apply now",
	"share this job",
	"save job",
	"indeed.com",
	"linkedin.com",
	"glassdoor.com",
	"skip to main content",
	"navigation",
	"menu",
	"footer",
	"header",
}

// noiseElements never contain posting text.
const noiseElements = "script, style, noscript, nav, header, footer, iframe, svg, form"

// blockElements get a trailing newline so adjacent blocks do not run together.
const blockElements = "p, div, br, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, td, th, section, article, main, dd, dt"

var (
	htmlPattern        = regexp.MustCompile(`(?i)<\s*(!doctype|html|head|body|div|p|main|article|section|span|ul|li|h[1-6])[\s>/]`)
	boilerplatePattern = compileDenylist(boilerplate)
)

func compileDenylist(phrases []string) *regexp.Regexp {
	sorted := append([]string(nil), phrases...)
	// Longest first so "sign in" is not shadowed by a shorter overlapping phrase.
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// Cleaner strips markup and boilerplate and enforces the content length policy.
type Cleaner struct {
	minLength int
	maxLength int
}

// NewCleaner returns a Cleaner truncating at maxLength characters.
// A non-positive maxLength uses MaxJobDescriptionLength.
func NewCleaner(maxLength int) *Cleaner {
	if maxLength <= 0 {
		maxLength = MaxJobDescriptionLength
	}
	return &Cleaner{minLength: MinContentChars, maxLength: maxLength}
}

// Clean converts raw HTML or rendered text into ExtractedContent.
// It returns a *TooShortError when fewer than MinContentChars characters survive.
func (c *Cleaner) Clean(raw string) (*ExtractedContent, error) {
	text := raw
	if LooksLikeHTML(raw) {
		if extracted, err := htmlText(raw); err == nil {
			text = extracted
		}
	}

	text = collapseWhitespace(text)
	text = boilerplatePattern.ReplaceAllString(text, " ")
	text = collapseWhitespace(text)

	length := utf8.RuneCountInString(text)
	if length < c.minLength {
		return nil, &TooShortError{Length: length, Min: c.minLength}
	}

	if length > c.maxLength {
		text = truncateRunes(text, c.maxLength)
		length = c.maxLength
	}

	return &ExtractedContent{Text: text, Length: length}, nil
}

// LooksLikeHTML reports whether s contains markup worth parsing.
func LooksLikeHTML(s string) bool {
	return htmlPattern.MatchString(s)
}

// htmlText returns the visible text of the most plausible content region.
func htmlText(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find(noiseElements).Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	for _, selector := range fetch.ContentSelectors() {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}
		text := region.Text()
		if utf8.RuneCountInString(collapseWhitespace(text)) > fetch.MinRegionChars {
			return text, nil
		}
	}

	return doc.Find("body").Text(), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
