package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/LJTian/InterestHub/internal/catalog"
	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/enricher"
	"github.com/LJTian/InterestHub/internal/metrics"
	"github.com/LJTian/InterestHub/internal/normalize"
	"github.com/LJTian/InterestHub/internal/processor"
)

// Orchestrator 驱动单个分类的完整采集流程：
// PRIMARY_FETCH → ESCALATE* → FILTER → DEDUP → ENRICH → (PAD) → SORT_AND_CAP。
// 不保存每轮状态，可被多个分类并发调用。
type Orchestrator struct {
	Catalog   *catalog.Catalog
	Providers map[string]collector.Provider
	Enricher  *enricher.Enricher
	// Now 为空时使用 time.Now
	Now func() time.Time
}

// New 按名称注册数据源
func New(cat *catalog.Catalog, enr *enricher.Enricher, providers ...collector.Provider) *Orchestrator {
	m := make(map[string]collector.Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Orchestrator{Catalog: cat, Providers: m, Enricher: enr}
}

// step 一次数据源调用
type step struct {
	source string
	query  string
	max    int
	offset int
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// plan 生成有序的调用计划：主数据源 → 其它数据源（可翻页的多取一页） → 扩展关键词
func (o *Orchestrator) plan(cat catalog.Category, cfg Config) []step {
	if len(cat.Sources) == 0 {
		return nil
	}
	var steps []step
	for i, src := range cat.Sources {
		steps = append(steps, step{source: src, query: cat.QueryFor(src), max: cfg.PerSourceMax})
		if i == 0 {
			continue
		}
		if p, ok := o.Providers[src].(collector.Paginated); ok && p.Paginated() {
			steps = append(steps, step{source: src, query: cat.QueryFor(src), max: cfg.PerSourceMax, offset: cfg.PerSourceMax})
		}
	}

	primary := cat.Sources[0]
	for i := 1; i < len(cat.Keywords) && i < cfg.MaxKeywords; i++ {
		steps = append(steps, step{source: primary, query: cat.Keywords[i], max: cfg.ExpansionMax})
	}
	return steps
}

// Run 采集一个分类。只有分类不存在时返回错误；单个数据源的失败只记录日志。
func (o *Orchestrator) Run(ctx context.Context, key string, cfg Config) ([]collector.Article, error) {
	cat, err := o.Catalog.Lookup(key)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	started := time.Now()
	now := o.now()

	// PRIMARY_FETCH + ESCALATE
	var raw []collector.Article
	for i, s := range o.plan(cat, cfg) {
		if i > 0 && len(raw) >= cfg.Target {
			break
		}
		if ctx.Err() != nil {
			log.Printf("pipeline %s: context done, stop escalating: %v", cat.Key, ctx.Err())
			break
		}
		raw = append(raw, o.fetch(ctx, cat.Key, s)...)
	}

	// FILTER
	window := processor.NewWindow(now, cfg.Lookback, cfg.FutureTolerance)
	parser := normalize.DateParser{Now: func() time.Time { return now }}
	fresh, fstats := window.Filter(processor.Clean(raw, cat.Key), parser)

	// DEDUP
	dedup := processor.NewDeduplicator(false)
	unique, dupes := dedup.Dedup(fresh)

	// ENRICH
	var estats enricher.Stats
	if o.Enricher != nil {
		estats = o.Enricher.Enrich(ctx, unique)
	}

	// 兜底：real 模式原样返回，demo 模式用占位条目补足
	padded := 0
	if cfg.Mode == ModeDemo && len(unique) < cfg.Target {
		before := len(unique)
		unique = padWithSamples(unique, cat, cfg.Target, window, now, dedup)
		padded = len(unique) - before
	}

	// SORT_AND_CAP
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].PublishedAt.After(unique[j].PublishedAt)
	})
	if len(unique) > cfg.MaxItems {
		unique = unique[:cfg.MaxItems]
	}

	run := metrics.Run{
		Fetched:   len(raw),
		Undated:   fstats.Undated,
		Stale:     fstats.Stale,
		Future:    fstats.Future,
		Dupes:     dupes,
		Images:    estats.Images,
		Summaries: estats.Summaries,
		Padded:    padded,
		Returned:  len(unique),
		Duration:  time.Since(started),
	}
	metrics.Global.RecordRun(run)
	log.Printf("pipeline %s done: fetched=%d fresh=%d unique=%d enriched=%d/%d padded=%d out=%d in %s",
		cat.Key, run.Fetched, len(fresh), len(fresh)-dupes, estats.Images, estats.Summaries, padded, len(unique), run.Duration.Round(time.Millisecond))

	return unique, nil
}

// fetch 执行单步调用，数据源返回错误或 panic 时只记录，返回已拿到的部分结果
func (o *Orchestrator) fetch(ctx context.Context, category string, s step) (items []collector.Article) {
	p, ok := o.Providers[s.source]
	if !ok {
		log.Printf("pipeline %s: provider %s not registered, skip", category, s.source)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Printf("fetch %s error: %v", s.source, err)
			metrics.Global.ProviderError(s.source, err)
			items = nil
		}
	}()

	items, err := p.Fetch(ctx, s.query, s.max, s.offset)
	if err != nil {
		log.Printf("fetch %s (%q offset=%d) error: %v", s.source, s.query, s.offset, err)
		metrics.Global.ProviderError(s.source, err)
	}
	return items
}
