package processor

import (
	"strings"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/normalize"
)

// Deduplicator 单遍去重，先到先得：规范化 URL 相同，或标题相似度超过阈值，都视为重复。
// ByDomain 为 true 时，标题只和同一站点已接受的标题比较。
type Deduplicator struct {
	ByDomain bool

	urls   map[string]struct{}
	titles map[string][]string
}

// NewDeduplicator 构造空的去重器
func NewDeduplicator(byDomain bool) *Deduplicator {
	return &Deduplicator{
		ByDomain: byDomain,
		urls:     make(map[string]struct{}),
		titles:   make(map[string][]string),
	}
}

// Accept 检查单条候选，未重复时记录并返回 true
func (d *Deduplicator) Accept(a collector.Article) bool {
	if d.urls == nil {
		d.urls = make(map[string]struct{})
		d.titles = make(map[string][]string)
	}
	key := a.NormalizedURL()
	if _, ok := d.urls[key]; ok {
		return false
	}

	scope := ""
	if d.ByDomain {
		scope = a.Domain()
	}
	title := strings.ToLower(strings.TrimSpace(a.Title))
	for _, seen := range d.titles[scope] {
		if normalize.IsDuplicateTitle(seen, title) {
			return false
		}
	}

	d.urls[key] = struct{}{}
	d.titles[scope] = append(d.titles[scope], title)
	return true
}

// Dedup 按到达顺序过滤一批条目，返回保留的条目与丢弃数量
func (d *Deduplicator) Dedup(items []collector.Article) ([]collector.Article, int) {
	kept := make([]collector.Article, 0, len(items))
	for _, it := range items {
		if d.Accept(it) {
			kept = append(kept, it)
		}
	}
	return kept, len(items) - len(kept)
}
