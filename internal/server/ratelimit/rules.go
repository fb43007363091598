package ratelimit

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one endpoint. A Path ending in "/" matches by prefix, so
// "/cv/sections/" covers every section key. Limit <= 0 means unlimited.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config controls the limiter. Allowlisted clients bypass all checks,
// denylisted clients are always refused.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Allowlist       map[string]bool
	Denylist        map[string]bool
	Rules           []Rule
}

// DefaultConfig returns the built-in limits with no allow or deny lists.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Allowlist:       map[string]bool{},
		Denylist:        map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules tiers the API by cost: translation fans out one model call
// per section, upload runs document extraction, everything else is local.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/cv/translate", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/cv/upload", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/cv/sections/", Method: http.MethodPut, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/cv/reset", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/sessions", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// LoadConfig reads limiter settings from RATE_LIMIT_* environment variables,
// falling back to the defaults above.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Allowlist:       parseClientList(os.Getenv("RATE_LIMIT_ALLOWLIST")),
		Denylist:        parseClientList(os.Getenv("RATE_LIMIT_DENYLIST")),
		Rules:           DefaultRules(),
	}
}

// unlimitedRule marks endpoints exempt from limiting (Limit 0).
var unlimitedRule = Rule{Path: "/health", Method: http.MethodGet}

// matchRule finds the rule for a request: exact path and method first, then
// prefix rules. The health check is never limited; no match returns nil.
func matchRule(path, method string, rules []Rule) *Rule {
	if path == "/health" && method == http.MethodGet {
		return &unlimitedRule
	}

	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		if rules[i].Method == method && strings.HasSuffix(rules[i].Path, "/") && strings.HasPrefix(path, rules[i].Path) {
			return &rules[i]
		}
	}
	return nil
}

func parseClientList(value string) map[string]bool {
	clients := make(map[string]bool)
	for _, entry := range strings.Split(value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			clients[entry] = true
		}
	}
	return clients
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
