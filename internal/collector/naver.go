package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/LJTian/InterestHub/internal/normalize"
)

const (
	naverBaseURL    = "https://openapi.naver.com/v1/search"
	naverMaxDisplay = 100
)

// NaverKind 选择 Naver 搜索 API 的类型
type NaverKind string

const (
	NaverNews NaverKind = "news"
	NaverBlog NaverKind = "blog"
)

// Naver 通过 Naver 开放搜索 API 抓取新闻或博客。
// 未配置 ClientID/ClientSecret 时不发请求，只打印一次警告。
type Naver struct {
	Kind         NaverKind
	ClientID     string
	ClientSecret string
	Client       *http.Client
	// BaseURL 为空时使用官方地址，测试中指向 httptest
	BaseURL string

	warnOnce sync.Once
}

func (n *Naver) Name() string {
	return "naver_" + string(n.Kind)
}

func (n *Naver) Paginated() bool { return true }

type naverResponse struct {
	Total int         `json:"total"`
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	OriginalLink string `json:"originallink"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
	BloggerName  string `json:"bloggername"`
	PostDate     string `json:"postdate"`
}

func (n *Naver) Fetch(ctx context.Context, query string, maxResults, offset int) ([]Article, error) {
	if n.ClientID == "" || n.ClientSecret == "" {
		n.warnOnce.Do(func() {
			log.Printf("warn: %s skipped, NAVER_CLIENT_ID / NAVER_CLIENT_SECRET not configured", n.Name())
		})
		return nil, nil
	}
	if maxResults <= 0 {
		return nil, nil
	}

	display := maxResults
	if display > naverMaxDisplay {
		display = naverMaxDisplay
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", strconv.Itoa(offset+1))
	params.Set("sort", "date")

	base := n.BaseURL
	if base == "" {
		base = naverBaseURL
	}
	endpoint := fmt.Sprintf("%s/%s.json?%s", base, n.Kind, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", n.Name(), err)
	}
	req.Header.Set("X-Naver-Client-Id", n.ClientID)
	req.Header.Set("X-Naver-Client-Secret", n.ClientSecret)

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request: %w", n.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: n.Name(), StatusCode: resp.StatusCode}
	}

	var body naverResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", n.Name(), err)
	}

	results := make([]Article, 0, len(body.Items))
	for _, it := range body.Items {
		a, ok := n.toArticle(it)
		if !ok {
			continue
		}
		results = append(results, a)
	}

	if len(results) == 0 {
		log.Printf("%s: no items for %q", n.Name(), query)
	}
	return results, nil
}

func (n *Naver) toArticle(it naverItem) (Article, bool) {
	title := normalize.StripHTML(it.Title)
	link := strings.TrimSpace(it.Link)
	if n.Kind == NaverNews && strings.TrimSpace(it.OriginalLink) != "" {
		link = strings.TrimSpace(it.OriginalLink)
	}
	if !ValidTitle(title) || !strings.HasPrefix(link, "http") {
		return Article{}, false
	}

	raw := it.PubDate
	source := normalize.Domain(link)
	if n.Kind == NaverBlog {
		raw = it.PostDate
		if name := strings.TrimSpace(it.BloggerName); name != "" {
			source = name
		}
	}

	a := Article{
		Title:   title,
		URL:     link,
		Source:  source,
		RawDate: raw,
		Summary: normalize.Truncate(normalize.StripHTML(it.Description), FeedSummaryMax),
	}
	if t, ok := normalize.Date(raw); ok {
		a.PublishedAt = t
	}
	return a, true
}
