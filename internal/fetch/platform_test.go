package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySite_JSHeavy(t *testing.T) {
	tests := []string{
		"https://www.indeed.com/viewjob?jk=123",
		"https://indeed.com/viewjob?jk=123",
		"https://uk.indeed.com/viewjob?jk=abc",
		"https://www.linkedin.com/jobs/view/3912345678",
		"https://www.glassdoor.com/job-listing/nurse-JV_IC1.htm",
		"https://www.ziprecruiter.com/c/Acme/Job/Nurse",
		"https://acme.wd5.myworkdayjobs.com/en-US/External/job/123",
		"HTTPS://WWW.INDEED.COM/viewjob",
	}

	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			assert.Equal(t, SiteJSHeavyKnown, ClassifySite(u))
		})
	}
}

func TestClassifySite_Generic(t *testing.T) {
	tests := []string{
		"https://example.com/jobs/123",
		"https://job-boards.greenhouse.io/acme/jobs/7063751",
		"https://jobs.lever.co/acme/abc",
		"https://notindeed.com/viewjob",
		"https://indeed.com.evil.example/viewjob",
		"not a url",
		"",
	}

	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			assert.Equal(t, SiteGeneric, ClassifySite(u))
		})
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("https://www.linkedin.com/jobs/view/1")
	assert.Equal(t, "https://www.linkedin.com/jobs/view/1", req.URL)
	assert.Equal(t, SiteJSHeavyKnown, req.SiteClass)
}

func TestContentSelectors_Order(t *testing.T) {
	selectors := ContentSelectors()
	assert.Equal(t, "#jobDescriptionText", selectors[0])
	assert.Equal(t, "article", selectors[len(selectors)-1])
	assert.Contains(t, selectors, "main")
}
