// Package browser locates a local Chrome/Chromium binary and builds chromedp allocator options.
// Both rendered fetching and PDF rendering launch browsers through this package.
package browser

import (
	"errors"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"
)

// ErrNotFound is returned when no usable Chrome/Chromium binary exists on the system.
var ErrNotFound = errors.New("chrome browser not found")

// EnvChromePath overrides browser discovery when set.
const EnvChromePath = "CHROME_PATH"

// DesktopUserAgent is the browser-like user agent shared by the static and rendered fetchers.
const DesktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// executableNames are looked up on PATH in order.
var executableNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

// installPaths are checked when PATH lookups fail.
var installPaths = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/usr/bin/google-chrome",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/headless-shell/headless-shell",
}

// Finder resolves the browser executable path. Tests swap it out.
type Finder func() (string, error)

// Find returns the path of the first Chrome/Chromium binary it can locate.
// CHROME_PATH wins when it points at an existing file.
func Find() (string, error) {
	if p := os.Getenv(EnvChromePath); p != "" {
		if fileExists(p) {
			return p, nil
		}
	}

	for _, name := range executableNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}

	for _, p := range installPaths {
		if fileExists(p) {
			return p, nil
		}
	}

	return "", ErrNotFound
}

// Options controls how the allocator launches the browser.
type Options struct {
	ExecPath  string
	UserAgent string
	// Stealth suppresses the automation signatures most anti-bot scripts check first.
	Stealth bool
}

// AllocatorOptions returns exec allocator options for a headless browser.
func AllocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Stealth {
		allocOpts = append(allocOpts,
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("enable-automation", false),
		)
	}

	return allocOpts
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
