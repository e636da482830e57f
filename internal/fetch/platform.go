// Package fetch - platform.go classifies target sites to decide strategy ordering.
package fetch

import (
	"net/url"
	"strings"
)

// SiteClass determines which strategy runs first for a URL.
type SiteClass string

const (
	// SiteGeneric sites are tried with a plain HTTP fetch first.
	SiteGeneric SiteClass = "generic"
	// SiteJSHeavyKnown sites render their postings client-side and are tried in a browser first.
	SiteJSHeavyKnown SiteClass = "js_heavy_known"
)

// jsHeavyDomains are job boards known to serve little or no posting text without JavaScript.
var jsHeavyDomains = []string{
	"indeed.com",
	"linkedin.com",
	"glassdoor.com",
	"ziprecruiter.com",
	"myworkdayjobs.com",
}

// Request is an immutable extraction target with its site class computed once.
type Request struct {
	URL       string
	SiteClass SiteClass
}

// NewRequest classifies urlStr and returns the resulting request.
func NewRequest(urlStr string) Request {
	return Request{URL: urlStr, SiteClass: ClassifySite(urlStr)}
}

// ClassifySite returns the site class for a URL. Unparseable URLs are generic.
func ClassifySite(urlStr string) SiteClass {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return SiteGeneric
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return SiteGeneric
	}

	for _, domain := range jsHeavyDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return SiteJSHeavyKnown
		}
	}

	return SiteGeneric
}

// ContentSelectors returns the ordered structural selectors used to locate the job
// description region: description containers first, then generic main/article.
func ContentSelectors() []string {
	return []string{
		"#jobDescriptionText",
		".jobsearch-jobDescriptionText",
		"div[id*='jobDescription']",
		"div[class*='jobDescription']",
		"div[class*='job-description']",
		"div[data-testid*='jobDescription']",
		"[data-automation-id='jobPostingDescription']",
		".show-more-less-html__markup",
		".job__description",
		".posting-page",
		"div[class*='description']",
		"div[data-testid*='description']",
		"main",
		"article",
	}
}

// MinRegionChars is the visible-text length a region must exceed to be chosen over the body.
const MinRegionChars = 200
