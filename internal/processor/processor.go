package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/normalize"
)

// ArticleID 以 (分类, URL) 作为幂等键生成存储 ID，同一链接在不同分类下各存一份
func ArticleID(category, url string) string {
	h := sha256.New()
	h.Write([]byte(category))
	h.Write([]byte{'|'})
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// Clean 做入库/输出前的基础清洗：去空白、标记分类、摘要长度保护
func Clean(items []collector.Article, category string) []collector.Article {
	out := make([]collector.Article, 0, len(items))
	for _, it := range items {
		it.Title = strings.TrimSpace(it.Title)
		it.URL = strings.TrimSpace(it.URL)
		it.Source = strings.TrimSpace(it.Source)
		it.ImageURL = strings.TrimSpace(it.ImageURL)
		it.Summary = normalize.Truncate(it.Summary, collector.FeedSummaryMax)
		if it.Source == "" {
			it.Source = it.Domain()
		}
		if category != "" {
			it.Category = category
		}
		out = append(out, it)
	}
	return out
}
