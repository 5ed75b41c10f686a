package metrics

import (
	"sync"
	"time"
)

// Metrics 进程内的采集计数，经 /metrics 暴露
type Metrics struct {
	mu sync.RWMutex

	Runs               int64
	FailedRuns         int64
	Fetched            int64
	DroppedUndated     int64
	DroppedStale       int64
	DroppedFuture      int64
	DuplicatesFiltered int64
	EnrichedImages     int64
	EnrichedSummaries  int64
	Padded             int64
	Returned           int64
	ProviderErrors     map[string]int64

	LastRunTime     time.Time
	LastRunDuration time.Duration
	LastError       string
	LastErrorTime   time.Time
}

var Global = New()

func New() *Metrics {
	return &Metrics{ProviderErrors: make(map[string]int64)}
}

// Run 单轮分类采集的统计
type Run struct {
	Fetched   int
	Undated   int
	Stale     int
	Future    int
	Dupes     int
	Images    int
	Summaries int
	Padded    int
	Returned  int
	Duration  time.Duration
}

// RecordRun 累加一轮采集的结果
func (m *Metrics) RecordRun(r Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
	m.Fetched += int64(r.Fetched)
	m.DroppedUndated += int64(r.Undated)
	m.DroppedStale += int64(r.Stale)
	m.DroppedFuture += int64(r.Future)
	m.DuplicatesFiltered += int64(r.Dupes)
	m.EnrichedImages += int64(r.Images)
	m.EnrichedSummaries += int64(r.Summaries)
	m.Padded += int64(r.Padded)
	m.Returned += int64(r.Returned)
	m.LastRunTime = time.Now()
	m.LastRunDuration = r.Duration
}

// ProviderError 记录某个数据源的一次失败
func (m *Metrics) ProviderError(provider string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProviderErrors[provider]++
	if err != nil {
		m.LastError = provider + ": " + err.Error()
		m.LastErrorTime = time.Now()
	}
}

// RunFailed 记录整轮失败（例如入库失败）
func (m *Metrics) RunFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedRuns++
	if err != nil {
		m.LastError = err.Error()
		m.LastErrorTime = time.Now()
	}
}

// GetStats 返回可直接序列化的快照
func (m *Metrics) GetStats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	providerErrors := make(map[string]int64, len(m.ProviderErrors))
	for k, v := range m.ProviderErrors {
		providerErrors[k] = v
	}
	stats := map[string]any{
		"runs":                m.Runs,
		"failed_runs":         m.FailedRuns,
		"fetched":             m.Fetched,
		"dropped_undated":     m.DroppedUndated,
		"dropped_stale":       m.DroppedStale,
		"dropped_future":      m.DroppedFuture,
		"duplicates_filtered": m.DuplicatesFiltered,
		"enriched_images":     m.EnrichedImages,
		"enriched_summaries":  m.EnrichedSummaries,
		"padded":              m.Padded,
		"returned":            m.Returned,
		"provider_errors":     providerErrors,
		"last_run_duration":   m.LastRunDuration.String(),
	}
	if !m.LastRunTime.IsZero() {
		stats["last_run_time"] = m.LastRunTime.Format(time.RFC3339)
	}
	if m.LastError != "" {
		stats["last_error"] = m.LastError
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
