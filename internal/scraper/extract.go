package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/normalize"
	"github.com/PuerkitoBio/goquery"
)

// Metadata 页面抽取结果，任何字段都可能为空
type Metadata struct {
	Title     string
	ImageURL  string
	Summary   string
	Published time.Time
}

// Empty 没有抽取到任何内容
func (m Metadata) Empty() bool {
	return m.Title == "" && m.ImageURL == "" && m.Summary == "" && m.Published.IsZero()
}

const (
	summaryMin     = 80
	summaryMax     = 160
	titleMin       = 5
	minImageSide   = 200
	maxSentences   = 3
	contentSelects = "article, .post-content, .entry-content, .article-body, .content, .post"
	noiseSelects   = "script, style, nav, header, footer, aside, noscript"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?。]\s+`)
	textDateRes     = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4})[-./](\d{1,2})[-./](\d{1,2})`),
		regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`),
	}
)

// Extract 从已解析的页面中按优先级抽取标题、图片、摘要、发布时间。
// root 通常是 <html> 节点；pageURL 用于把相对图片地址转成绝对地址。
func Extract(root *goquery.Selection, pageURL *url.URL) Metadata {
	return Metadata{
		Title:     extractTitle(root),
		ImageURL:  extractImage(root, pageURL),
		Summary:   extractSummary(root),
		Published: extractPublished(root),
	}
}

func metaContent(root *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if v, ok := root.Find(s).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func extractTitle(root *goquery.Selection) string {
	candidates := []string{
		metaContent(root, `meta[property="og:title"]`),
		root.Find("title").First().Text(),
		root.Find("h1").First().Text(),
	}
	for _, c := range candidates {
		c = strings.Join(strings.Fields(c), " ")
		if normalize.RuneLen(c) >= titleMin {
			return c
		}
	}
	return ""
}

func extractImage(root *goquery.Selection, pageURL *url.URL) string {
	if img := metaContent(root,
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	); img != "" {
		return ResolveURL(pageURL, img)
	}
	if href, ok := root.Find(`link[rel="image_src"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return ResolveURL(pageURL, strings.TrimSpace(href))
	}

	var found string
	root.Find(contentSelects).Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(src, "data:") {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return true
		}
		if !largeEnough(img) {
			return true
		}
		found = ResolveURL(pageURL, src)
		return false
	})
	return found
}

// largeEnough 有 width/height 属性时要求都不小于 200，没有属性时放行
func largeEnough(img *goquery.Selection) bool {
	for _, attr := range []string{"width", "height"} {
		v, ok := img.Attr(attr)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
		if err != nil {
			continue
		}
		if n < minImageSide {
			return false
		}
	}
	return true
}

// ResolveURL 把 //host/a、/a、a 等相对地址解析为绝对地址
func ResolveURL(pageURL *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if pageURL == nil {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			return ref
		}
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return pageURL.ResolveReference(r).String()
}

func extractSummary(root *goquery.Selection) string {
	if desc := metaContent(root, `meta[name="description"]`, `meta[property="og:description"]`); normalize.RuneLen(desc) >= summaryMin {
		return normalize.Truncate(strings.Join(strings.Fields(desc), " "), summaryMax)
	}

	body := root.Find(contentSelects).First()
	if body.Length() == 0 {
		return ""
	}
	body = body.Clone()
	body.Find(noiseSelects).Remove()
	text := strings.Join(strings.Fields(body.Text()), " ")

	var b strings.Builder
	count := 0
	for _, s := range splitSentences(text) {
		if count >= maxSentences {
			break
		}
		if normalize.RuneLen(b.String())+normalize.RuneLen(s)+1 >= summaryMax {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		count++
	}
	summary := b.String()
	if normalize.RuneLen(summary) < summaryMin {
		return ""
	}
	return summary
}

// splitSentences 按句末标点切分并保留标点
func splitSentences(text string) []string {
	idx := sentenceSplitRe.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(idx)+1)
	start := 0
	for _, loc := range idx {
		// loc[0] 是标点位置，保留标点
		end := loc[0] + len(strings.TrimRight(text[loc[0]:loc[1]], " \t\n\r"))
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func extractPublished(root *goquery.Selection) time.Time {
	if v := metaContent(root, `meta[property="article:published_time"]`, `meta[name="article:published_time"]`); v != "" {
		if t, ok := normalize.Date(v); ok {
			return t
		}
	}
	if v, ok := root.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, ok := normalize.Date(v); ok {
			return t
		}
	}

	body := root.Find("body")
	if body.Length() == 0 {
		body = root
	}
	text := body.Text()
	for _, re := range textDateRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if t, ok := normalize.Date(m[1] + "-" + m[2] + "-" + m[3]); ok {
			return t
		}
	}
	return time.Time{}
}
