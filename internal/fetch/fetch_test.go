package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-agent/internal/browser"
)

func newTestStatic(timeout time.Duration) *StaticFetcher {
	return NewStaticFetcher(StaticOptions{Timeout: timeout, Delay: NoDelay})
}

func TestStaticFetcher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Registered Nurse</h1></body></html>"))
	}))
	defer server.Close()

	result := newTestStatic(time.Second).Fetch(context.Background(), server.URL)
	require.True(t, result.OK(), result.Cause)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, http.StatusOK, result.Code)
	assert.Equal(t, StrategyStatic, result.Strategy)
	assert.Contains(t, result.RawText, "<h1>Registered Nurse</h1>")
	assert.NoError(t, result.Err())
}

func TestStaticFetcher_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	result := newTestStatic(time.Second).Fetch(context.Background(), server.URL)
	require.True(t, result.OK())

	assert.Equal(t, browser.DesktopUserAgent, got.Get("User-Agent"))
	assert.Contains(t, got.Get("Accept"), "text/html")
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "1", got.Get("Upgrade-Insecure-Requests"))
}

func TestStaticFetcher_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantStatus Status
	}{
		{"forbidden is blocked", http.StatusForbidden, StatusBlocked},
		{"not found", http.StatusNotFound, StatusHTTPError},
		{"server error", http.StatusInternalServerError, StatusHTTPError},
		{"too many requests", http.StatusTooManyRequests, StatusHTTPError},
		{"unauthorized", http.StatusUnauthorized, StatusHTTPError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte("body"))
			}))
			defer server.Close()

			result := newTestStatic(time.Second).Fetch(context.Background(), server.URL)
			assert.False(t, result.OK())
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.code, result.Code)
			assert.Empty(t, result.RawText)

			var fetchErr *Error
			require.ErrorAs(t, result.Err(), &fetchErr)
			assert.Equal(t, tt.code, fetchErr.Code)
		})
	}
}

func TestStaticFetcher_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result := newTestStatic(time.Second).Fetch(context.Background(), server.URL)
	assert.False(t, result.OK())
	assert.Equal(t, StatusHTTPError, result.Status)
	assert.Equal(t, http.StatusOK, result.Code)
	assert.Equal(t, "empty response body", result.Cause)
}

func TestStaticFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	result := newTestStatic(50*time.Millisecond).Fetch(context.Background(), server.URL)
	assert.Equal(t, StatusTimeout, result.Status)
	assert.Contains(t, result.Cause, "took too long")
}

func TestStaticFetcher_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	result := newTestStatic(time.Second).Fetch(context.Background(), url)
	assert.Equal(t, StatusHTTPError, result.Status)
	assert.Equal(t, 0, result.Code)
	assert.Equal(t, ReasonConnection, result.Reason)
}

func TestStaticFetcher_DelayRespectsCancellation(t *testing.T) {
	f := NewStaticFetcher(StaticOptions{Delay: func() time.Duration { return time.Hour }})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	result := f.Fetch(ctx, "http://example.invalid")
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StatusTimeout, result.Status)
}

func TestStaticFetcher_BodyCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxBodyBytes+1024)))
	}))
	defer server.Close()

	result := newTestStatic(5 * time.Second).Fetch(context.Background(), server.URL)
	require.True(t, result.OK())
	assert.Len(t, result.RawText, MaxBodyBytes)
}

func TestRandomDelay_Bounds(t *testing.T) {
	delay := RandomDelay(MinCourtesyDelay, MaxCourtesyDelay)
	for i := 0; i < 200; i++ {
		d := delay()
		assert.GreaterOrEqual(t, d, MinCourtesyDelay)
		assert.Less(t, d, MaxCourtesyDelay)
	}

	assert.Equal(t, time.Second, RandomDelay(time.Second, time.Second)())
}

func TestResult_OKRequiresText(t *testing.T) {
	assert.False(t, (&Result{Status: StatusOK}).OK())
	assert.False(t, (*Result)(nil).OK())
	assert.True(t, ok("u", StrategyStatic, "text", 200).OK())
}

func TestError_Message(t *testing.T) {
	err := failed("https://example.com/job", StrategyRendered, StatusRenderFailure, 0,
		ReasonBrowserNotFound, "Chrome browser not found").Err()

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, ReasonBrowserNotFound, fetchErr.Reason)
	assert.Equal(t,
		"fetch error for https://example.com/job (rendered, render_failure): Chrome browser not found",
		err.Error())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "blocked", StatusBlocked.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
	assert.Equal(t, "status(42)", Status(42).String())
}

func TestRenderedFetcher_BrowserNotFound(t *testing.T) {
	calls := 0
	f := NewRenderedFetcher(RenderedOptions{
		Finder: func() (string, error) {
			calls++
			return "", browser.ErrNotFound
		},
	})

	result := f.Fetch(context.Background(), "https://www.indeed.com/viewjob?jk=1")
	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusRenderFailure, result.Status)
	assert.Equal(t, ReasonBrowserNotFound, result.Reason)
	assert.Equal(t, "Chrome browser not found", result.Cause)
	assert.Equal(t, StrategyRendered, result.Strategy)
}

func TestRenderedFetcher_SetupFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-chrome")
	f := NewRenderedFetcher(RenderedOptions{
		ProcessTimeout: 10 * time.Second,
		Finder:         func() (string, error) { return missing, nil },
	})

	result := f.Fetch(context.Background(), "https://example.com")
	assert.Equal(t, StatusRenderFailure, result.Status)
	assert.Equal(t, ReasonBrowserSetup, result.Reason)
	assert.True(t, strings.HasPrefix(result.Cause, "Browser setup failed"))
}

func TestRenderedFetcher_PicksDescriptionRegion(t *testing.T) {
	if _, err := browser.Find(); err != nil {
		t.Skip("no Chrome/Chromium available")
	}

	description := strings.Repeat("Provide compassionate patient care across the unit. ", 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<nav>Home Jobs Sign in</nav>
			<div id="root"></div>
			<script>
				document.getElementById('root').innerHTML =
					'<div id="jobDescriptionText">` + description + `</div>';
			</script>
		</body></html>`))
	}))
	defer server.Close()

	f := NewRenderedFetcher(RenderedOptions{PageLoadTimeout: 15 * time.Second})
	result := f.Fetch(context.Background(), server.URL)
	require.True(t, result.OK(), result.Cause)
	assert.Contains(t, result.RawText, "compassionate patient care")
	assert.NotContains(t, result.RawText, "Sign in")
}

func TestBuildRegionScript(t *testing.T) {
	script, err := buildRegionScript([]string{"main", "div[class*='x']"}, 200)
	require.NoError(t, err)
	assert.Contains(t, script, `["main","div[class*='x']"]`)
	assert.Contains(t, script, ", 200)")
}
