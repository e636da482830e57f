package composer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Placeholders returned when a heuristic finds nothing.
const (
	CompanyPlaceholder = "[Company Name]"
	TitlePlaceholder   = "[Job Title]"
)

const maxNameLength = 100

// companyMarkers are tried in order on each of the first companyScanLines lines.
var companyMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)at `),
	regexp.MustCompile(`(?i)company:`),
	regexp.MustCompile(`(?i)employer:`),
	regexp.MustCompile(`(?i)organization:`),
}

// aggregatorDomains never name the hiring company.
var aggregatorDomains = []string{
	"indeed.com",
	"linkedin.com",
	"glassdoor.com",
	"monster.com",
	"ziprecruiter.com",
}

var (
	titleSkipWords = []string{"description", "requirements", "qualifications", "responsibilities"}
	titleParams    = []string{"title", "job_title", "position", "role"}
	pathSkipWords  = []string{"jobs", "careers", "apply", "search"}
)

const (
	companyScanLines = 10
	titleScanLines   = 5
)

// ExtractCompanyName guesses the hiring company. It is a best-effort heuristic:
// a marker line in the description wins, then the job URL's first domain label
// unless the host is a job aggregator, else CompanyPlaceholder.
func ExtractCompanyName(description, jobURL string) string {
	for _, line := range firstLines(description, companyScanLines) {
		line = strings.TrimSpace(line)
		for _, marker := range companyMarkers {
			loc := marker.FindStringIndex(line)
			if loc == nil {
				continue
			}
			company := strings.TrimSpace(line[loc[1]:])
			if company != "" && utf8.RuneCountInString(company) < maxNameLength {
				return company
			}
		}
	}

	if jobURL == "" {
		return CompanyPlaceholder
	}
	parsed, err := url.Parse(strings.TrimSpace(jobURL))
	if err != nil {
		return CompanyPlaceholder
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return CompanyPlaceholder
	}
	for _, site := range aggregatorDomains {
		if strings.Contains(host, site) {
			return CompanyPlaceholder
		}
	}

	label, _, _ := strings.Cut(host, ".")
	if utf8.RuneCountInString(label) > 2 {
		return titleCase(label)
	}
	return CompanyPlaceholder
}

// ExtractJobTitle guesses the job title. It is a best-effort heuristic: the first
// short description line that is not a section heading wins, then a title-like
// URL query parameter or path segment, else TitlePlaceholder.
func ExtractJobTitle(description, jobURL string) string {
	for _, line := range firstLines(description, titleScanLines) {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) >= maxNameLength {
			continue
		}
		if !containsAny(strings.ToLower(line), titleSkipWords) {
			return line
		}
	}

	if jobURL == "" {
		return TitlePlaceholder
	}
	parsed, err := url.Parse(strings.TrimSpace(jobURL))
	if err != nil {
		return TitlePlaceholder
	}

	query := parsed.Query()
	for _, param := range titleParams {
		if title := query.Get(param); title != "" && utf8.RuneCountInString(title) < maxNameLength {
			return humanize(title)
		}
	}

	for _, segment := range strings.Split(parsed.Path, "/") {
		n := utf8.RuneCountInString(segment)
		if n <= 3 || n >= 50 {
			continue
		}
		if !containsAny(strings.ToLower(segment), pathSkipWords) {
			return humanize(segment)
		}
	}

	return TitlePlaceholder
}

func humanize(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return titleCase(s)
}

// titleCase builds a fresh Caser per call; Casers are stateful.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func firstLines(text string, n int) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
