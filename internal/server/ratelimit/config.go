package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rule limits one route. Path matches exactly unless it ends in "/", in which
// case it matches as a prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int           // requests per Window, 0 means unlimited
	Window time.Duration
	Burst  int           // bucket capacity, defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket survives cleanup.
	IdleTTL time.Duration
	// Exempt client ids are never limited.
	Exempt map[string]bool
	Rules  []Rule
}

// DefaultConfig limits model-backed routes hardest, browser-backed routes
// next, and everything else by the default limit.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    300,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Exempt:          map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the per-route limits for the cover letter API.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/health", Method: http.MethodGet, Limit: 0},

		// Each call is a model request.
		{Path: "/generate", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/improve", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 5},

		// Each call may start a headless browser.
		{Path: "/extract", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/render", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 10},

		// Uploads rebuild the embedding index.
		{Path: "/context", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/documents/", Method: http.MethodPost, Limit: 120, Window: time.Hour, Burst: 20},
	}
}

// LoadConfig overlays RATE_LIMIT_* environment variables on DefaultConfig.
// Unparsable values keep the default.
func LoadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool(getenv, "RATE_LIMIT_ENABLED", cfg.Enabled)
	cfg.DefaultLimit = envInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = envDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = envDuration(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Exempt = parseIDList(getenv("RATE_LIMIT_EXEMPT"))
	return cfg
}

// Match returns the rule for path and method, or nil. Exact paths win over
// prefixes.
func Match(path, method string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}

func envInt(getenv func(string) string, key string, def int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v, err := strconv.ParseBool(getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(key)); err == nil {
		return v
	}
	return def
}

func parseIDList(list string) map[string]bool {
	ids := make(map[string]bool)
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = true
		}
	}
	return ids
}
