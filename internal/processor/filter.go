package processor

import (
	"time"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/normalize"
)

// DefaultFutureTolerance 允许的时钟偏差，超过 now+10min 的时间视为脏数据
const DefaultFutureTolerance = 10 * time.Minute

// Window 发布时间窗口，两端都包含
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow lookback 为 0 表示“今天”（KST 自然日零点起）
func NewWindow(now time.Time, lookback, tolerance time.Duration) Window {
	now = now.In(normalize.KST)
	start := normalize.StartOfDay(now)
	if lookback > 0 {
		start = now.Add(-lookback)
	}
	return Window{Start: start, End: now.Add(tolerance)}
}

// Contains 判断时间是否落在窗口内
func (w Window) Contains(t time.Time) bool {
	return !t.IsZero() && !t.Before(w.Start) && !t.After(w.End)
}

// FilterStats 过滤时丢弃的数量，仅用于统计，不展示给用户
type FilterStats struct {
	Undated int
	Stale   int
	Future  int
}

// Dropped 丢弃总数
func (s FilterStats) Dropped() int {
	return s.Undated + s.Stale + s.Future
}

// Filter 只保留发布时间在窗口内的条目。
// PublishedAt 为零值时用日期解析器再解析一次 RawDate，仍无法确定日期的条目直接丢弃。
func (w Window) Filter(items []collector.Article, parser normalize.DateParser) ([]collector.Article, FilterStats) {
	var stats FilterStats
	kept := make([]collector.Article, 0, len(items))
	for _, it := range items {
		if it.PublishedAt.IsZero() {
			t, ok := parser.Parse(it.RawDate)
			if !ok {
				stats.Undated++
				continue
			}
			it.PublishedAt = t
		}
		switch {
		case it.PublishedAt.Before(w.Start):
			stats.Stale++
			continue
		case it.PublishedAt.After(w.End):
			stats.Future++
			continue
		}
		it.PublishedAt = it.PublishedAt.In(normalize.KST)
		kept = append(kept, it)
	}
	return kept, stats
}
