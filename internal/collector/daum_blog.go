package collector

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/httpclient"
	"github.com/LJTian/InterestHub/internal/normalize"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	daumSearchURL  = "https://search.daum.net/search"
	daumPageSize   = 10
	daumReqTimeout = 8 * time.Second
)

// Daum 搜索结果页结构经常调整，各字段按选择器列表依次尝试
var (
	daumItemSelector = "ul.list_info > li, ul.c-list-basic > li, div.wrap_cont"
	daumTitleSels    = []string{"a.f_link_b", "div.c-tit-doc a", "strong.tit-g a", "a.tit_main", "a[href*='tistory.com']", "a[href*='blog.daum.net']"}
	daumSummarySels  = []string{"p.f_eb.desc", "p.conts-desc", "div.conts-desc", "p.desc"}
	daumDateSels     = []string{"span.f_nb.date", "span.gem-subinfo", "span.txt_info", "span.date"}
	daumSourceSels   = []string{"a.f_nb", "span.txt_info a", "a.item-writer", "span.c-blog-name"}
)

// DaumBlog 抓取 Daum 博客搜索结果页（按最新排序）
type DaumBlog struct {
	// Transport 共享的重试 Transport，为空时使用 http.DefaultTransport
	Transport http.RoundTripper
	// BaseURL 为空时使用官方地址，测试中指向 httptest
	BaseURL string
}

func (d *DaumBlog) Name() string {
	return "daum_blog"
}

func (d *DaumBlog) Paginated() bool { return true }

// SearchURL 构造搜索地址，p 从 1 开始
func (d *DaumBlog) SearchURL(query string, page int) string {
	base := d.BaseURL
	if base == "" {
		base = daumSearchURL
	}
	params := url.Values{}
	params.Set("w", "blog")
	params.Set("q", query)
	params.Set("DA", "PGD")
	params.Set("sort", "recency")
	params.Set("p", strconv.Itoa(page))
	return base + "?" + params.Encode()
}

func (d *DaumBlog) Fetch(ctx context.Context, query string, maxResults, offset int) ([]Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(httpclient.UserAgent),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	)
	c.SetRequestTimeout(daumReqTimeout)
	c.WithTransport(httpclient.WithContext(ctx, d.Transport))
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "ko-KR,ko;q=0.9")
	})

	results := make([]Article, 0, daumPageSize)
	seen := make(map[string]struct{})

	c.OnHTML(daumItemSelector, func(e *colly.HTMLElement) {
		link := firstAttr(e.DOM, daumTitleSels, "href")
		title := normalize.StripHTML(firstText(e.DOM, daumTitleSels))
		if link == "" || !ValidTitle(title) {
			return
		}
		if abs := e.Request.AbsoluteURL(link); abs != "" {
			link = abs
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}

		a := Article{
			Title:   title,
			URL:     link,
			Source:  firstText(e.DOM, daumSourceSels),
			Summary: normalize.Truncate(firstText(e.DOM, daumSummarySels), FeedSummaryMax),
			RawDate: firstText(e.DOM, daumDateSels),
		}
		if src := e.ChildAttr("img", "src"); src != "" {
			a.ImageURL = e.Request.AbsoluteURL(src)
		}
		if a.Source == "" {
			a.Source = normalize.Domain(link)
		}
		if t, ok := normalize.Date(a.RawDate); ok {
			a.PublishedAt = t
		}
		results = append(results, a)
	})

	page := offset/daumPageSize + 1
	if err := c.Visit(d.SearchURL(query, page)); err != nil {
		return nil, fmt.Errorf("daum_blog: visit: %w", err)
	}

	if skip := offset % daumPageSize; skip > 0 {
		results = window(results, 0, skip)
	}
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	if len(results) == 0 {
		log.Printf("daum_blog: no items for %q", query)
	}
	return results, nil
}

func firstText(sel *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if t := strings.TrimSpace(sel.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func firstAttr(sel *goquery.Selection, selectors []string, attr string) string {
	for _, s := range selectors {
		if v, ok := sel.Find(s).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
