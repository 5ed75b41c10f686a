package enricher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/scraper"
)

// fakeSource 记录最大并发数，按 URL 返回预设结果
type fakeSource struct {
	mu       sync.Mutex
	results  map[string]scraper.Metadata
	inFlight int32
	peak     int32
	calls    int32
}

func (f *fakeSource) Lookup(ctx context.Context, pageURL string) scraper.Metadata {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	atomic.AddInt32(&f.calls, 1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[pageURL]
}

func TestEnrichFillsOnlyMissingFields(t *testing.T) {
	src := &fakeSource{results: map[string]scraper.Metadata{
		"https://a.com/1": {ImageURL: "https://a.com/img.png", Summary: "페이지에서 뽑은 요약"},
		"https://a.com/2": {ImageURL: "https://a.com/other.png", Summary: "덮어쓰면 안 되는 요약"},
	}}
	items := []collector.Article{
		{URL: "https://a.com/1"},
		{URL: "https://a.com/2", Summary: "원래 요약"},
		{URL: "https://a.com/3"}, // 抓取失败
		{URL: "https://a.com/4", ImageURL: "x", Summary: "y"},
	}

	stats := New(src, 2).Enrich(context.Background(), items)

	if items[0].ImageURL != "https://a.com/img.png" || items[0].Summary != "페이지에서 뽑은 요약" {
		t.Fatalf("item 0 not enriched: %+v", items[0])
	}
	if items[1].Summary != "원래 요약" || items[1].ImageURL != "https://a.com/other.png" {
		t.Fatalf("item 1 existing summary overwritten or image missing: %+v", items[1])
	}
	if items[2].ImageURL != "" || items[2].Summary != "" {
		t.Fatalf("failed lookup should leave empty strings: %+v", items[2])
	}
	if stats.Attempted != 3 || stats.Images != 2 || stats.Summaries != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if atomic.LoadInt32(&src.calls) != 3 {
		t.Fatalf("complete item should not be fetched, calls=%d", src.calls)
	}
}

func TestEnrichIsBounded(t *testing.T) {
	src := &fakeSource{results: map[string]scraper.Metadata{}}
	items := make([]collector.Article, 40)
	for i := range items {
		items[i].URL = fmt.Sprintf("https://a.com/%d", i)
	}

	New(src, DefaultConcurrency).Enrich(context.Background(), items)

	if p := atomic.LoadInt32(&src.peak); p > DefaultConcurrency {
		t.Fatalf("peak concurrency %d exceeds %d", p, DefaultConcurrency)
	}
	if atomic.LoadInt32(&src.calls) != 40 {
		t.Fatalf("calls = %d, want 40", src.calls)
	}
}

func TestEnrichStopsOnCancelledContext(t *testing.T) {
	src := &fakeSource{results: map[string]scraper.Metadata{}}
	items := []collector.Article{{URL: "https://a.com/1"}, {URL: "https://a.com/2"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := New(src, 1).Enrich(ctx, items)
	if stats.Attempted != 0 {
		t.Fatalf("cancelled context should not start lookups, attempted=%d", stats.Attempted)
	}
}
