package scraper

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/httpclient"
	"github.com/gocolly/colly/v2"
)

const (
	defaultTimeout = 8 * time.Second
	maxPageBytes   = 2 << 20 // 2MB
)

// Scraper 抓取单个页面并抽取元数据。任何失败都返回空 Metadata，不向调用方报错。
type Scraper struct {
	// Transport 共享的重试 Transport，为空时使用 http.DefaultTransport
	Transport http.RoundTripper
	Timeout   time.Duration
}

// New 使用共享 Transport 构造 Scraper
func New(rt http.RoundTripper, timeout time.Duration) *Scraper {
	return &Scraper{Transport: rt, Timeout: timeout}
}

// Lookup 发起一次 GET（跟随跳转），在 <html> 上执行 Extract
func (s *Scraper) Lookup(ctx context.Context, pageURL string) Metadata {
	if ctx.Err() != nil || !strings.HasPrefix(pageURL, "http") {
		return Metadata{}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := colly.NewCollector(
		colly.UserAgent(httpclient.UserAgent),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
		colly.MaxBodySize(maxPageBytes),
	)
	c.SetRequestTimeout(timeout)
	c.WithTransport(httpclient.WithContext(ctx, s.Transport))
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
		r.Headers.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.6")
	})

	var md Metadata
	c.OnHTML("html", func(e *colly.HTMLElement) {
		md = Extract(e.DOM, e.Request.URL)
	})

	if err := c.Visit(pageURL); err != nil {
		log.Printf("scrape %s error: %v", pageURL, err)
		return Metadata{}
	}
	return md
}
