package rendering

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/jonathan/cover-letter-agent/internal/browser"
)

// DefaultTimeout bounds one whole render, browser start included.
const DefaultTimeout = 30 * time.Second

// US Letter in inches.
const (
	paperWidth  = 8.5
	paperHeight = 11
	margin      = 1
)

// Renderer converts cover letter text into document bytes.
type Renderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// PDFOptions configures a PDFRenderer.
type PDFOptions struct {
	Timeout time.Duration
	// Finder defaults to browser.Find.
	Finder browser.Finder
	Logger *zerolog.Logger
}

// PDFRenderer prints the letter page with a fresh headless browser per call.
type PDFRenderer struct {
	timeout time.Duration
	find    browser.Finder
	logger  zerolog.Logger
}

// NewPDFRenderer creates a PDFRenderer, filling unset options with defaults.
func NewPDFRenderer(opts PDFOptions) *PDFRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Finder == nil {
		opts.Finder = browser.Find
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &PDFRenderer{
		timeout: opts.Timeout,
		find:    opts.Finder,
		logger:  logger.With().Str("component", "rendering").Logger(),
	}
}

// Render returns a US Letter PDF of text.
func (r *PDFRenderer) Render(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyLetter
	}

	html, err := BuildHTML(text)
	if err != nil {
		return nil, err
	}

	execPath, err := r.find()
	if err != nil {
		return nil, &RenderError{Message: "Chrome browser not found", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browser.AllocatorOptions(browser.Options{ExecPath: execPath})...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx); err != nil {
		return nil, &RenderError{Message: "browser setup failed", Cause: err}
	}

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to print PDF", Cause: err}
	}

	r.logger.Debug().Int("bytes", len(pdf)).Msg("rendered cover letter PDF")
	return pdf, nil
}
