package extraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/cover-letter-agent/internal/fetch"
)

// ErrTooShort matches any *TooShortError via errors.Is.
var ErrTooShort = errors.New("extracted content too short")

// TooShortError reports cleaned text below the minimum content length.
type TooShortError struct {
	Length int
	Min    int
}

func (e *TooShortError) Error() string {
	return fmt.Sprintf("extracted content too short: %d characters (minimum %d)", e.Length, e.Min)
}

// Is reports whether target is ErrTooShort.
func (e *TooShortError) Is(target error) bool {
	return target == ErrTooShort
}

// InvalidURLError is returned before any fetch when the URL cannot be a job posting.
type InvalidURLError struct {
	URL     string
	Message string
	Cause   error
}

func (e *InvalidURLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid job URL %q: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid job URL %q: %s", e.URL, e.Message)
}

func (e *InvalidURLError) Unwrap() error {
	return e.Cause
}

// AttemptError records one failed strategy in the fallback chain.
type AttemptError struct {
	Strategy string
	Cause    error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Cause)
}

func (e *AttemptError) Unwrap() error {
	return e.Cause
}

// AllStrategiesFailedError is returned when every fetch strategy failed.
// BestCause is the attempt most likely to give the user a concrete remediation.
type AllStrategiesFailedError struct {
	URL       string
	BestCause error
	Attempts  []error
}

func (e *AllStrategiesFailedError) Error() string {
	return e.Message()
}

// Message returns the user-facing description of the failure.
func (e *AllStrategiesFailedError) Message() string {
	var fetchErr *fetch.Error
	if errors.As(e.BestCause, &fetchErr) {
		switch fetchErr.Reason {
		case fetch.ReasonBrowserNotFound:
			return "Chrome browser not installed. Please install Google Chrome or copy and paste the job description manually."
		case fetch.ReasonBrowserSetup:
			return "Browser setup failed. Please copy and paste the job description manually."
		}
		if fetchErr.Message != "" {
			return fmt.Sprintf("Could not extract job information from this site: %s Please copy and paste the job description manually.",
				sentence(fetchErr.Message))
		}
	}
	if errors.Is(e.BestCause, ErrTooShort) {
		return "Could not extract sufficient job information from the page. Please copy and paste the job description manually."
	}
	return "Could not extract job information. Please copy and paste the job description manually."
}

func (e *AllStrategiesFailedError) Unwrap() error {
	return e.BestCause
}

// causeRank orders failures by how actionable they are for the user. Higher wins.
func causeRank(err error) int {
	if errors.Is(err, ErrTooShort) {
		return 1
	}

	var fetchErr *fetch.Error
	if !errors.As(err, &fetchErr) {
		return 0
	}

	switch {
	case fetchErr.Reason == fetch.ReasonBrowserNotFound:
		return 5
	case fetchErr.Reason == fetch.ReasonBrowserSetup:
		return 4
	case fetchErr.Status == fetch.StatusBlocked,
		fetchErr.Status == fetch.StatusHTTPError && fetchErr.Code == 404:
		return 3
	case fetchErr.Status == fetch.StatusTimeout,
		fetchErr.Reason == fetch.ReasonConnection:
		return 0
	case fetchErr.Status == fetch.StatusHTTPError,
		fetchErr.Status == fetch.StatusRenderFailure:
		return 2
	default:
		return 0
	}
}

// bestCause returns the highest ranked error; ties keep the earlier attempt.
func bestCause(attempts []error) error {
	var best error
	bestRank := -1
	for _, err := range attempts {
		if r := causeRank(err); r > bestRank {
			best, bestRank = err, r
		}
	}
	return best
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
