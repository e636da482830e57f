package extraction

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/fetch"
)

// Options configures an Orchestrator. Nil fetchers get default implementations.
type Options struct {
	Static   fetch.Fetcher
	Rendered fetch.Fetcher
	Cleaner  *Cleaner
	Logger   *zerolog.Logger
}

// Orchestrator extracts job descriptions using a per-site fallback chain.
// It holds no per-call state, so one instance may serve concurrent calls.
type Orchestrator struct {
	static   fetch.Fetcher
	rendered fetch.Fetcher
	cleaner  *Cleaner
	logger   zerolog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Static == nil {
		opts.Static = fetch.NewStaticFetcher(fetch.StaticOptions{Logger: &logger})
	}
	if opts.Rendered == nil {
		opts.Rendered = fetch.NewRenderedFetcher(fetch.RenderedOptions{Logger: &logger})
	}
	if opts.Cleaner == nil {
		opts.Cleaner = NewCleaner(MaxJobDescriptionLength)
	}

	return &Orchestrator{
		static:   opts.Static,
		rendered: opts.Rendered,
		cleaner:  opts.Cleaner,
		logger:   logger.With().Str("component", "extraction").Logger(),
	}
}

// Extract fetches and cleans the job description at jobURL.
// Individual strategy failures are absorbed; only exhaustion of the chain is
// reported, as an *AllStrategiesFailedError.
func (o *Orchestrator) Extract(ctx context.Context, jobURL string) (*ExtractedContent, error) {
	jobURL = strings.TrimSpace(jobURL)
	if err := ValidateURL(jobURL); err != nil {
		return nil, err
	}

	req := fetch.NewRequest(jobURL)
	o.logger.Debug().Str("url", req.URL).Str("site_class", string(req.SiteClass)).Msg("extracting job description")

	var attempts []error
	for _, fetcher := range o.strategies(req.SiteClass) {
		result := fetcher.Fetch(ctx, req.URL)
		if !result.OK() {
			o.logger.Debug().Str("strategy", fetcher.Name()).Str("status", result.Status.String()).
				Str("cause", result.Cause).Msg("strategy failed")
			attempts = append(attempts, &AttemptError{Strategy: fetcher.Name(), Cause: result.Err()})
			continue
		}

		content, err := o.cleaner.Clean(result.RawText)
		if err != nil {
			o.logger.Debug().Str("strategy", fetcher.Name()).Err(err).Msg("content rejected")
			attempts = append(attempts, &AttemptError{Strategy: fetcher.Name(), Cause: err})
			continue
		}

		o.logger.Info().Str("strategy", fetcher.Name()).Int("chars", content.Length).Msg("job description extracted")
		return content, nil
	}

	failure := &AllStrategiesFailedError{
		URL:       req.URL,
		BestCause: bestCause(attempts),
		Attempts:  attempts,
	}
	o.logger.Warn().Str("url", req.URL).Err(failure.BestCause).Msg("all extraction strategies failed")
	return nil, failure
}

// strategies returns the fetch order for a site class.
func (o *Orchestrator) strategies(class fetch.SiteClass) []fetch.Fetcher {
	if class == fetch.SiteJSHeavyKnown {
		return []fetch.Fetcher{o.rendered, o.static}
	}
	return []fetch.Fetcher{o.static, o.rendered}
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(jobURL string) error {
	if jobURL == "" {
		return &InvalidURLError{URL: jobURL, Message: "URL is empty"}
	}
	parsed, err := url.Parse(jobURL)
	if err != nil {
		return &InvalidURLError{URL: jobURL, Message: "URL could not be parsed", Cause: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &InvalidURLError{URL: jobURL, Message: "URL must start with http:// or https://"}
	}
	if parsed.Host == "" {
		return &InvalidURLError{URL: jobURL, Message: "URL has no host"}
	}
	return nil
}
