package enricher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/normalize"
	"github.com/LJTian/InterestHub/internal/scraper"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency 同时进行的页面抓取上限，兼顾目标站点负载与本机资源
const DefaultConcurrency = 6

// MetadataSource 页面元数据来源，scraper.Scraper 是默认实现
type MetadataSource interface {
	Lookup(ctx context.Context, pageURL string) scraper.Metadata
}

// Enricher 为缺少图片或摘要的条目并发补全元数据
type Enricher struct {
	Source      MetadataSource
	Concurrency int
}

// Stats 本轮补全结果
type Stats struct {
	Attempted int
	Images    int
	Summaries int
}

// New 构造 Enricher，concurrency<=0 时使用默认值
func New(src MetadataSource, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{Source: src, Concurrency: concurrency}
}

func needsEnrich(a collector.Article) bool {
	return a.ImageURL == "" || a.Summary == ""
}

// Enrich 原地补全 items；只填充空字段，失败时保持空字符串，不会让整轮失败。
// ctx 结束后不再发起新的抓取。
func (e *Enricher) Enrich(ctx context.Context, items []collector.Article) Stats {
	var stats Stats
	if e == nil || e.Source == nil {
		return stats
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		wg        sync.WaitGroup
		sem       = semaphore.NewWeighted(int64(limit))
		images    int64
		summaries int64
	)

	for i := range items {
		if !needsEnrich(items[i]) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		stats.Attempted++
		wg.Add(1)
		go func(a *collector.Article) {
			defer wg.Done()
			defer sem.Release(1)

			md := e.Source.Lookup(ctx, a.URL)
			// 每个 goroutine 只写自己的元素，无需加锁
			if a.ImageURL == "" && md.ImageURL != "" {
				a.ImageURL = md.ImageURL
				atomic.AddInt64(&images, 1)
			}
			if a.Summary == "" && md.Summary != "" {
				a.Summary = normalize.Truncate(md.Summary, collector.PageSummaryMax)
				atomic.AddInt64(&summaries, 1)
			}
		}(&items[i])
	}
	wg.Wait()

	stats.Images = int(images)
	stats.Summaries = int(summaries)
	return stats
}
