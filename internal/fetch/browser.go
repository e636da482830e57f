// Package fetch - browser.go renders JavaScript-heavy pages in a headless browser.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/browser"
)

// StrategyRendered names the headless browser strategy.
const StrategyRendered = "rendered"

// Rendered fetch bounds. Page load is bounded separately from the whole browser session.
const (
	DefaultPageLoadTimeout = 5 * time.Second
	DefaultProcessTimeout  = 30 * time.Second
)

// stealthScript runs before any page script and hides the usual automation tells.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
window.chrome = window.chrome || {runtime: {}};
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});`

// regionScript returns the text of the first selector whose visible text exceeds
// the threshold, falling back to the whole body.
const regionScript = `(function(selectors, minChars) {
	for (const sel of selectors) {
		let el = null;
		try { el = document.querySelector(sel); } catch (e) { continue; }
		if (!el) continue;
		const text = (el.innerText || '').trim();
		if (text.length > minChars) return text;
	}
	return document.body ? (document.body.innerText || '') : '';
})(%s, %d)`

// RenderedOptions configures a RenderedFetcher.
type RenderedOptions struct {
	PageLoadTimeout time.Duration
	ProcessTimeout  time.Duration
	UserAgent       string
	// Finder defaults to browser.Find.
	Finder browser.Finder
	Logger *zerolog.Logger
}

// RenderedFetcher drives a fresh headless browser per call. The browser is always
// torn down before Fetch returns.
type RenderedFetcher struct {
	pageLoadTimeout time.Duration
	processTimeout  time.Duration
	userAgent       string
	find            browser.Finder
	logger          zerolog.Logger
}

// NewRenderedFetcher creates a RenderedFetcher, filling unset options with defaults.
func NewRenderedFetcher(opts RenderedOptions) *RenderedFetcher {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = DefaultPageLoadTimeout
	}
	if opts.ProcessTimeout <= 0 {
		opts.ProcessTimeout = DefaultProcessTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = browser.DesktopUserAgent
	}
	if opts.Finder == nil {
		opts.Finder = browser.Find
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &RenderedFetcher{
		pageLoadTimeout: opts.PageLoadTimeout,
		processTimeout:  opts.ProcessTimeout,
		userAgent:       opts.UserAgent,
		find:            opts.Finder,
		logger:          logger.With().Str("strategy", StrategyRendered).Logger(),
	}
}

// Name implements Fetcher.
func (f *RenderedFetcher) Name() string { return StrategyRendered }

// Fetch renders urlStr and returns the visible text of its best content region.
func (f *RenderedFetcher) Fetch(ctx context.Context, urlStr string) *Result {
	execPath, err := f.find()
	if err != nil {
		f.logger.Debug().Err(err).Msg("no browser available")
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonBrowserNotFound,
			"Chrome browser not found")
	}

	procCtx, cancelProc := context.WithTimeout(ctx, f.processTimeout)
	defer cancelProc()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(procCtx, browser.AllocatorOptions(browser.Options{
		ExecPath:  execPath,
		UserAgent: f.userAgent,
		Stealth:   true,
	})...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	f.logger.Debug().Str("exec", execPath).Str("url", urlStr).Msg("starting headless browser")

	// An empty Run starts the browser, separating setup failures from page failures.
	if err := chromedp.Run(browserCtx); err != nil {
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonBrowserSetup,
			fmt.Sprintf("Browser setup failed: %v", err))
	}

	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})); err != nil {
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonBrowserSetup,
			fmt.Sprintf("Browser setup failed: %v", err))
	}

	loadCtx, cancelLoad := context.WithTimeout(browserCtx, f.pageLoadTimeout)
	err = chromedp.Run(loadCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	cancelLoad()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failed(urlStr, StrategyRendered, StatusTimeout, 0, ReasonNone,
				"Page took too long to load. The site may be slow or blocking requests.")
		}
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonNone,
			fmt.Sprintf("browser navigation failed: %v", err))
	}

	script, err := buildRegionScript(ContentSelectors(), MinRegionChars)
	if err != nil {
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonNone, err.Error())
	}

	var text string
	if err := chromedp.Run(browserCtx, chromedp.Evaluate(script, &text)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return failed(urlStr, StrategyRendered, StatusTimeout, 0, ReasonNone,
				"Page took too long to load. The site may be slow or blocking requests.")
		}
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonNone,
			fmt.Sprintf("failed to read rendered text: %v", err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return failed(urlStr, StrategyRendered, StatusRenderFailure, 0, ReasonNone, "rendered page has no visible text")
	}

	f.logger.Debug().Int("chars", len(text)).Msg("rendered text extracted")
	return ok(urlStr, StrategyRendered, text, 0)
}

func buildRegionScript(selectors []string, minChars int) (string, error) {
	encoded, err := json.Marshal(selectors)
	if err != nil {
		return "", fmt.Errorf("failed to encode selectors: %w", err)
	}
	return fmt.Sprintf(regionScript, encoded, minChars), nil
}
