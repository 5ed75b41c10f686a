package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/normalize"
)

// Article 各数据源统一后的文章结构，贯穿整个流水线
type Article struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	// 零值表示上游未提供或无法解析；经过时间窗口过滤后一定有值
	PublishedAt time.Time `json:"publishedAt"`
	// 上游原始日期文本，过滤阶段会再尝试解析一次
	RawDate  string `json:"-"`
	ImageURL string `json:"imageUrl"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

// NormalizedURL 用于去重的规范化链接
func (a Article) NormalizedURL() string {
	return normalize.URL(a.URL)
}

// Domain 文章所在站点
func (a Article) Domain() string {
	return normalize.Domain(a.URL)
}

// ValidTitle 少于 5 个字符的标题视为无效
func ValidTitle(title string) bool {
	return normalize.RuneLen(strings.TrimSpace(title)) >= 5
}

// Provider 抽象每一个上游数据源。
// 出错时返回已收集到的部分结果和错误，由编排层记录日志后继续，不会中断整轮采集。
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query string, maxResults, offset int) ([]Article, error)
}

// Paginated 支持按 offset 翻页的数据源
type Paginated interface {
	Paginated() bool
}

// StatusError 上游返回非 200 状态码
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// 摘要长度上限：Feed/API 描述较长，页面抽取的摘要较短
const (
	FeedSummaryMax = 320
	PageSummaryMax = 160
)

const maxResponseBytes = 2 << 20 // 2MB
