package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/LJTian/InterestHub/internal/normalize"
	"github.com/mmcdole/gofeed"
)

// fetchFeed 下载并解析一个 RSS/Atom 源
func fetchFeed(ctx context.Context, client *http.Client, name, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", name, err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request %s: %w", name, feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: name, StatusCode: resp.StatusCode}
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: parse %s: %w", name, feedURL, err)
	}
	return feed, nil
}

// feedItemToArticle 把 Feed 条目映射为 Article；缺少标题或链接时返回 false
func feedItemToArticle(item *gofeed.Item, feedTitle string) (Article, bool) {
	if item == nil {
		return Article{}, false
	}
	title := normalize.StripHTML(item.Title)
	link := strings.TrimSpace(item.Link)
	if !ValidTitle(title) || !strings.HasPrefix(link, "http") {
		return Article{}, false
	}

	a := Article{
		Title:    title,
		URL:      link,
		Source:   feedSource(item, feedTitle, link),
		Summary:  normalize.Truncate(normalize.StripHTML(item.Description), FeedSummaryMax),
		ImageURL: feedImage(item),
		RawDate:  item.Published,
	}
	if a.RawDate == "" {
		a.RawDate = item.Updated
	}

	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = item.PublishedParsed.In(normalize.KST)
	case item.UpdatedParsed != nil:
		a.PublishedAt = item.UpdatedParsed.In(normalize.KST)
	}
	return a, true
}

func feedSource(item *gofeed.Item, feedTitle, link string) string {
	if t := strings.TrimSpace(feedTitle); t != "" {
		return t
	}
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	return normalize.Domain(link)
}

// feedImage 依次尝试 media:thumbnail、media:content、item.Image、图片类型的 enclosure
func feedImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"thumbnail", "content"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

// window 在拼接后的条目上应用 offset/max
func window(items []Article, maxResults, offset int) []Article {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}
	return items
}
