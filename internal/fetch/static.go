// Package fetch - static.go retrieves pages with a single plain HTTP GET.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/browser"
)

// StrategyStatic names the static HTTP strategy.
const StrategyStatic = "static"

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 5 << 20

// Courtesy delay bounds applied before every static request.
const (
	MinCourtesyDelay = 500 * time.Millisecond
	MaxCourtesyDelay = 1500 * time.Millisecond
)

// DelayFunc returns how long to wait before issuing a request.
type DelayFunc func() time.Duration

// RandomDelay returns a DelayFunc drawing uniformly from [lo, hi).
func RandomDelay(lo, hi time.Duration) DelayFunc {
	return func() time.Duration {
		if hi <= lo {
			return lo
		}
		return lo + rand.N(hi-lo)
	}
}

// NoDelay disables the courtesy delay.
func NoDelay() time.Duration { return 0 }

// StaticOptions configures a StaticFetcher.
type StaticOptions struct {
	Timeout   time.Duration
	UserAgent string
	// Delay defaults to RandomDelay(MinCourtesyDelay, MaxCourtesyDelay).
	Delay  DelayFunc
	Client *http.Client
	Logger *zerolog.Logger
}

// StaticFetcher fetches raw HTML without executing JavaScript. It never retries.
type StaticFetcher struct {
	client    *http.Client
	userAgent string
	delay     DelayFunc
	logger    zerolog.Logger
}

// NewStaticFetcher creates a StaticFetcher, filling unset options with defaults.
func NewStaticFetcher(opts StaticOptions) *StaticFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = browser.DesktopUserAgent
	}
	if opts.Delay == nil {
		opts.Delay = RandomDelay(MinCourtesyDelay, MaxCourtesyDelay)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	// Copy so the caller's client keeps its own timeout.
	c := *client
	c.Timeout = opts.Timeout

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &StaticFetcher{
		client:    &c,
		userAgent: opts.UserAgent,
		delay:     opts.Delay,
		logger:    logger.With().Str("strategy", StrategyStatic).Logger(),
	}
}

// Name implements Fetcher.
func (f *StaticFetcher) Name() string { return StrategyStatic }

// Fetch issues one GET for urlStr and maps the outcome onto a Result.
func (f *StaticFetcher) Fetch(ctx context.Context, urlStr string) *Result {
	if d := f.delay(); d > 0 {
		f.logger.Debug().Dur("delay", d).Msg("courtesy delay")
		if err := sleep(ctx, d); err != nil {
			return failed(urlStr, StrategyStatic, StatusTimeout, 0, ReasonNone,
				fmt.Sprintf("cancelled before request: %v", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return failed(urlStr, StrategyStatic, StatusHTTPError, 0, ReasonConnection,
			fmt.Sprintf("failed to create request: %v", err))
	}
	setBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			f.logger.Debug().Err(err).Msg("request timed out")
			return failed(urlStr, StrategyStatic, StatusTimeout, 0, ReasonNone,
				"Page took too long to load. The site may be slow or blocking requests.")
		}
		f.logger.Debug().Err(err).Msg("connection failed")
		return failed(urlStr, StrategyStatic, StatusHTTPError, 0, ReasonConnection,
			fmt.Sprintf("connection failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	f.logger.Debug().Int("status", resp.StatusCode).Str("url", urlStr).Msg("response received")

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return failed(urlStr, StrategyStatic, StatusBlocked, resp.StatusCode, ReasonNone,
			"Access denied (403). This job site may block automated requests.")
	case resp.StatusCode == http.StatusNotFound:
		return failed(urlStr, StrategyStatic, StatusHTTPError, resp.StatusCode, ReasonNone,
			"Job posting not found (404). Please check the URL and try again.")
	case resp.StatusCode != http.StatusOK:
		return failed(urlStr, StrategyStatic, StatusHTTPError, resp.StatusCode, ReasonNone,
			fmt.Sprintf("HTTP status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return failed(urlStr, StrategyStatic, StatusTimeout, resp.StatusCode, ReasonNone,
				"Page took too long to load. The site may be slow or blocking requests.")
		}
		return failed(urlStr, StrategyStatic, StatusHTTPError, resp.StatusCode, ReasonConnection,
			fmt.Sprintf("failed to read response body: %v", err))
	}
	if len(body) == 0 {
		return failed(urlStr, StrategyStatic, StatusHTTPError, resp.StatusCode, ReasonNone, "empty response body")
	}

	return ok(urlStr, StrategyStatic, string(body), resp.StatusCode)
}

func setBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
