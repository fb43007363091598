package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(rules ...Rule) *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Allowlist:     map[string]bool{},
		Denylist:      map[string]bool{},
		Rules:         rules,
	}
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := NewLimiter(testConfig(Rule{
		Path: "/cv/translate", Method: http.MethodPost,
		Limit: 10, Window: time.Hour, Burst: 3,
	}))
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", "/cv/translate", http.MethodPost)
		require.True(t, allowed, "request %d within burst", i+1)
		assert.Equal(t, 10, info.Limit)
	}

	allowed, info := l.Allow("10.0.0.1", "/cv/translate", http.MethodPost)
	require.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.False(t, info.ResetTime.IsZero())
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	// 50 tokens per second, burst of 1: a denied client gets another token
	// within well under a second.
	l := NewLimiter(testConfig(Rule{
		Path: "/cv/upload", Method: http.MethodPost,
		Limit: 50, Window: time.Second, Burst: 1,
	}))
	defer l.Stop()

	allowed, _ := l.Allow("10.0.0.1", "/cv/upload", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/cv/upload", http.MethodPost)
	require.False(t, allowed)

	require.Eventually(t, func() bool {
		ok, _ := l.Allow("10.0.0.1", "/cv/upload", http.MethodPost)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestLimiter_PerClientBuckets(t *testing.T) {
	l := NewLimiter(testConfig(Rule{
		Path: "/sessions", Method: http.MethodPost,
		Limit: 60, Window: time.Hour, Burst: 1,
	}))
	defer l.Stop()

	allowed, _ := l.Allow("10.0.0.1", "/sessions", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/sessions", http.MethodPost)
	require.False(t, allowed, "first client exhausted its burst")

	allowed, _ = l.Allow("10.0.0.2", "/sessions", http.MethodPost)
	assert.True(t, allowed, "second client has its own bucket")
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/cv/translate", http.MethodPost)
		require.True(t, allowed)
	}
}

func TestLimiter_Allowlist(t *testing.T) {
	cfg := testConfig(Rule{Path: "/cv/translate", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1})
	cfg.Allowlist["10.0.0.9"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("10.0.0.9", "/cv/translate", http.MethodPost)
		require.True(t, allowed)
	}
}

func TestLimiter_Denylist(t *testing.T) {
	cfg := testConfig()
	cfg.Denylist["10.0.0.13"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	allowed, info := l.Allow("10.0.0.13", "/health", http.MethodGet)
	require.False(t, allowed)
	assert.False(t, info.Allowed)
}

func TestLimiter_DefaultRuleForUnmatchedRoute(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 2
	cfg.DefaultWindow = time.Hour
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("10.0.0.1", "/cv", http.MethodGet)
		require.True(t, allowed)
		assert.Equal(t, 2, info.Limit)
	}
	allowed, _ := l.Allow("10.0.0.1", "/cv", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_HealthNeverLimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/health", http.MethodGet)
		require.True(t, allowed)
	}
}

func TestLimiter_DropIdleBuckets(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("10.0.0.1", "/cv", http.MethodGet)
	require.Len(t, l.buckets, 1)

	l.dropIdleBuckets(time.Now().Add(time.Second))
	assert.Empty(t, l.buckets)
	assert.Empty(t, l.lastAccess)
}

func TestMatchRule(t *testing.T) {
	rules := []Rule{
		{Path: "/cv/translate", Method: http.MethodPost, Limit: 10},
		{Path: "/cv/sections/", Method: http.MethodPut, Limit: 120},
	}

	tests := []struct {
		name   string
		path   string
		method string
		want   *Rule
	}{
		{"exact match", "/cv/translate", http.MethodPost, &rules[0]},
		{"prefix match", "/cv/sections/profile", http.MethodPut, &rules[1]},
		{"method mismatch", "/cv/translate", http.MethodGet, nil},
		{"unmatched route", "/cv", http.MethodGet, nil},
		{"health is unlimited", "/health", http.MethodGet, &unlimitedRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchRule(tt.path, tt.method, rules))
		})
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_ALLOWLIST", "10.0.0.1, 10.0.0.2")
	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 600, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Allowlist)
	assert.NotEmpty(t, cfg.Rules)
}
