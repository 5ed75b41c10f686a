package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	t.Setenv(key, "8080")
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DEPLOY_MODE", "LOOKBACK_DAYS", "CACHE_TTL", "FEED_URLS", "RESOLVE_GOOGLE_LINKS", "NAVER_CLIENT_ID"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.AppPort != "9000" || cfg.CronSpec != "*/30 * * * *" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DeployMode != "real" || cfg.Lookback != 72*time.Hour || cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg)
	}
	if len(cfg.FeedURLs) != 2 || !cfg.ResolveGoogleLinks || cfg.NaverClientID != "" {
		t.Fatalf("unexpected source defaults: %+v", cfg)
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "1234")
	t.Setenv("NAVER_CLIENT_ID", "id")
	t.Setenv("NAVER_CLIENT_SECRET", "secret")
	t.Setenv("DEPLOY_MODE", "DEMO")
	t.Setenv("LOOKBACK_DAYS", "0")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("ENRICH_CONCURRENCY", "abc")
	t.Setenv("FEED_URLS", " https://a.kr/rss, ,https://b.kr/feed ")
	t.Setenv("RESOLVE_GOOGLE_LINKS", "false")

	cfg := Load()
	if cfg.AppPort != "1234" || cfg.NaverClientID != "id" || cfg.NaverClientSecret != "secret" {
		t.Fatalf("port/credentials not loaded correctly: %+v", cfg)
	}
	if cfg.DeployMode != "demo" || cfg.Lookback != 0 || cfg.CacheTTL != 90*time.Second {
		t.Fatalf("mode/lookback/ttl not loaded correctly: %+v", cfg)
	}
	// 非法值回退默认
	if cfg.EnrichConcurrency != 6 {
		t.Fatalf("EnrichConcurrency = %d, want 6", cfg.EnrichConcurrency)
	}
	if len(cfg.FeedURLs) != 2 || cfg.FeedURLs[1] != "https://b.kr/feed" || cfg.ResolveGoogleLinks {
		t.Fatalf("feeds/resolve not loaded correctly: %+v", cfg)
	}
}
