package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/collector"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// Naver 开放平台凭证，缺失时 naver 数据源不工作
	NaverClientID     string
	NaverClientSecret string

	// DeployMode real|demo
	DeployMode string
	// Lookback 0 表示只看今天
	Lookback time.Duration

	CacheTTL          time.Duration
	HTTPTimeout       time.Duration
	EnrichConcurrency int

	CategoriesFile     string
	FeedURLs           []string
	ResolveGoogleLinks bool
}

func Load() *Config {
	cfg := &Config{
		AppPort:            getEnv("APP_PORT", "9000"),
		PostgresDSN:        getEnv("POSTGRES_DSN", "host=localhost user=interesthub password=interesthub dbname=interesthub port=5432 sslmode=disable TimeZone=Asia/Seoul"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6380"),
		CronSpec:           getEnv("CRON_SPEC", "*/30 * * * *"),
		NaverClientID:      os.Getenv("NAVER_CLIENT_ID"),
		NaverClientSecret:  os.Getenv("NAVER_CLIENT_SECRET"),
		DeployMode:         strings.ToLower(getEnv("DEPLOY_MODE", "real")),
		Lookback:           time.Duration(getEnvInt("LOOKBACK_DAYS", 3)) * 24 * time.Hour,
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		HTTPTimeout:        getEnvDuration("HTTP_TIMEOUT", 8*time.Second),
		EnrichConcurrency:  getEnvInt("ENRICH_CONCURRENCY", 6),
		CategoriesFile:     os.Getenv("CATEGORIES_FILE"),
		FeedURLs:           splitList(getEnv("FEED_URLS", strings.Join(collector.DefaultFeedURLs, ","))),
		ResolveGoogleLinks: getEnvBool("RESOLVE_GOOGLE_LINKS", true),
	}

	log.Printf("config loaded: port=%s cron=%s mode=%s lookback=%s naver=%t feeds=%d",
		cfg.AppPort, cfg.CronSpec, cfg.DeployMode, cfg.Lookback, cfg.NaverClientID != "", len(cfg.FeedURLs))
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		log.Printf("warn: invalid %s=%q, use default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		log.Printf("warn: invalid %s=%q, use default %s", key, v, def)
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("warn: invalid %s=%q, use default %t", key, v, def)
		return def
	}
	return b
}

// splitList 逗号分隔，忽略空项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
