package collector

import (
	"context"
	"errors"
	"net/http"
)

// DefaultFeedURLs 结果不足时兜底的韩语博客/技术 RSS
var DefaultFeedURLs = []string{
	"https://brunch.co.kr/rss",
	"https://tech.kakao.com/feed/",
}

// FeedRSS 轮询固定的 RSS 列表，查询词被忽略
type FeedRSS struct {
	URLs   []string
	Client *http.Client
}

func (f *FeedRSS) Name() string {
	return "feed_rss"
}

func (f *FeedRSS) Fetch(ctx context.Context, query string, maxResults, offset int) ([]Article, error) {
	var (
		all  []Article
		errs []error
	)
	for _, u := range f.URLs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		feed, err := fetchFeed(ctx, f.Client, f.Name(), u)
		if err != nil {
			// 单个源失败不影响其它源
			errs = append(errs, err)
			continue
		}
		for _, it := range feed.Items {
			if a, ok := feedItemToArticle(it, feed.Title); ok {
				all = append(all, a)
			}
		}
		if maxResults > 0 && len(all) >= offset+maxResults {
			break
		}
	}
	return window(all, maxResults, offset), errors.Join(errs...)
}
