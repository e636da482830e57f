// Package fetch retrieves job posting pages using interchangeable strategies.
// A static strategy issues a single HTTP GET; a rendered strategy drives a headless
// browser. Each strategy reports a tagged Result instead of failing with an error so the
// caller can run an explicit fallback chain.
package fetch

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 5 * time.Second

// Fetcher is implemented by every fetch strategy.
type Fetcher interface {
	// Name identifies the strategy in logs and error attempts.
	Name() string
	// Fetch retrieves url. It never returns nil.
	Fetch(ctx context.Context, url string) *Result
}

// Status tags the outcome of one fetch attempt.
type Status int

const (
	// StatusOK means RawText holds a non-empty page body or rendered text.
	StatusOK Status = iota
	// StatusHTTPError covers non-200 responses and connection failures (Code 0).
	StatusHTTPError
	// StatusTimeout means the request or page load exceeded its deadline.
	StatusTimeout
	// StatusBlocked means the site refused the request (HTTP 403).
	StatusBlocked
	// StatusRenderFailure covers browser discovery, startup and driver errors.
	StatusRenderFailure
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusHTTPError:
		return "http_error"
	case StatusTimeout:
		return "timeout"
	case StatusBlocked:
		return "blocked"
	case StatusRenderFailure:
		return "render_failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result holds the outcome of a single fetch attempt.
type Result struct {
	URL      string
	Strategy string
	Status   Status
	Code     int    // HTTP status code when known, 0 otherwise
	RawText  string // populated only when Status is StatusOK
	Cause    string // human-readable failure cause
	Reason   Reason // machine-readable failure refinement
}

// Reason refines a failure beyond its Status. Most failures carry ReasonNone.
type Reason string

const (
	// ReasonNone carries no refinement.
	ReasonNone Reason = ""
	// ReasonBrowserNotFound means no Chrome/Chromium binary could be located.
	ReasonBrowserNotFound Reason = "browser_not_found"
	// ReasonBrowserSetup means the browser binary exists but could not be started.
	ReasonBrowserSetup Reason = "browser_setup"
	// ReasonConnection means the TCP/TLS connection could not be established.
	ReasonConnection Reason = "connection"
)

// OK reports whether the attempt produced usable text.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusOK && r.RawText != ""
}

// Err converts a failed Result into an *Error. It returns nil for successful results.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{
		URL:      r.URL,
		Strategy: r.Strategy,
		Status:   r.Status,
		Code:     r.Code,
		Reason:   r.Reason,
		Message:  r.Cause,
	}
}

// Error represents a failed fetch attempt.
type Error struct {
	URL      string
	Strategy string
	Status   Status
	Code     int
	Reason   Reason
	Message  string
}

func (e *Error) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("fetch error for %s (%s, %s): %s", e.URL, e.Strategy, e.Status, e.Message)
	}
	return fmt.Sprintf("fetch error for %s (%s): %s", e.URL, e.Status, e.Message)
}

func ok(url, strategy, text string, code int) *Result {
	return &Result{URL: url, Strategy: strategy, Status: StatusOK, Code: code, RawText: text}
}

func failed(url, strategy string, status Status, code int, reason Reason, cause string) *Result {
	return &Result{URL: url, Strategy: strategy, Status: status, Code: code, Reason: reason, Cause: cause}
}
