package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/InterestHub/internal/normalize"
)

const naverNewsJSON = `{
  "total": 2,
  "items": [
    {
      "title": "<b>손흥민</b> 결승골 터뜨려",
      "originallink": "https://sports.example.kr/article/1?utm_source=naver",
      "link": "https://n.news.naver.com/mnews/article/001/0000001",
      "description": "토트넘 &quot;손흥민&quot;이 결승골을 넣었다.",
      "pubDate": "Mon, 14 Oct 2024 10:00:00 +0900"
    },
    {
      "title": "짧음",
      "originallink": "https://sports.example.kr/article/2",
      "link": "https://n.news.naver.com/mnews/article/001/0000002",
      "description": "",
      "pubDate": "Mon, 14 Oct 2024 09:00:00 +0900"
    }
  ]
}`

func TestNaverNewsFetch(t *testing.T) {
	var gotQuery, gotID, gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotID = r.Header.Get("X-Naver-Client-Id")
		gotSecret = r.Header.Get("X-Naver-Client-Secret")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(naverNewsJSON))
	}))
	defer srv.Close()

	n := &Naver{Kind: NaverNews, ClientID: "id", ClientSecret: "secret", Client: srv.Client(), BaseURL: srv.URL}
	items, err := n.Fetch(context.Background(), "축구", 150, 15)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if gotID != "id" || gotSecret != "secret" {
		t.Fatalf("credentials not sent: %q / %q", gotID, gotSecret)
	}
	for _, want := range []string{"display=100", "start=16", "sort=date"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}

	// 标题少于 5 个字符的条目被跳过
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	a := items[0]
	if a.Title != "손흥민 결승골 터뜨려" {
		t.Fatalf("title not stripped: %q", a.Title)
	}
	if a.URL != "https://sports.example.kr/article/1?utm_source=naver" {
		t.Fatalf("originallink not preferred: %q", a.URL)
	}
	if a.Summary != `토트넘 "손흥민"이 결승골을 넣었다.` {
		t.Fatalf("summary = %q", a.Summary)
	}
	want := time.Date(2024, 10, 14, 10, 0, 0, 0, normalize.KST)
	if !a.PublishedAt.Equal(want) {
		t.Fatalf("PublishedAt = %v, want %v", a.PublishedAt, want)
	}
	if a.Source != "sports.example.kr" {
		t.Fatalf("source = %q", a.Source)
	}
}

func TestNaverBlogUsesPostDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"title":"주말 당일치기 여행 코스","link":"https://blog.naver.com/user/223000","description":"코스 정리","bloggername":"여행러","postdate":"20241013"}]}`))
	}))
	defer srv.Close()

	n := &Naver{Kind: NaverBlog, ClientID: "id", ClientSecret: "secret", Client: srv.Client(), BaseURL: srv.URL}
	items, err := n.Fetch(context.Background(), "여행", 10, 0)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Source != "여행러" {
		t.Fatalf("source = %q, want blogger name", items[0].Source)
	}
	if want := time.Date(2024, 10, 13, 0, 0, 0, 0, normalize.KST); !items[0].PublishedAt.Equal(want) {
		t.Fatalf("PublishedAt = %v, want %v", items[0].PublishedAt, want)
	}
}

func TestNaverWithoutCredentialsIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	n := &Naver{Kind: NaverNews, Client: srv.Client(), BaseURL: srv.URL}
	items, err := n.Fetch(context.Background(), "건강", 10, 0)
	if err != nil || items != nil {
		t.Fatalf("expected nil, nil without credentials; got %v, %v", items, err)
	}
	if called {
		t.Fatalf("no request should be sent without credentials")
	}
}

func TestNaverStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := &Naver{Kind: NaverNews, ClientID: "id", ClientSecret: "bad", Client: srv.Client(), BaseURL: srv.URL}
	_, err := n.Fetch(context.Background(), "건강", 10, 0)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected StatusError 401, got %v", err)
	}
}

const googleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>"건강" - Google 뉴스</title>
<item>
  <title>가을철 건강 관리 수칙 - 헬스조선</title>
  <link>https://news.google.com/rss/articles/abc?oc=5</link>
  <pubDate>Mon, 14 Oct 2024 01:00:00 GMT</pubDate>
  <description>&lt;a href="x"&gt;가을철 건강 관리 수칙&lt;/a&gt;</description>
  <media:thumbnail url="https://img.example.com/a.jpg"/>
</item>
<item>
  <title>무</title>
  <link>https://news.google.com/rss/articles/def</link>
</item>
<item>
  <title>날짜 없는 기사 제목입니다</title>
  <link>https://news.google.com/rss/articles/ghi</link>
</item>
</channel>
</rss>`

func TestGoogleNewsFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(googleRSS))
	}))
	defer srv.Close()

	g := &GoogleNews{Client: srv.Client(), BaseURL: srv.URL}
	items, err := g.Fetch(context.Background(), "건강 OR 운동", 15, 0)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	for _, want := range []string{"hl=ko", "gl=KR", "ceid=KR%3Ako"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	a := items[0]
	if a.Title != "가을철 건강 관리 수칙" || a.Source != "헬스조선" {
		t.Fatalf("publisher suffix not split: title=%q source=%q", a.Title, a.Source)
	}
	if a.ImageURL != "https://img.example.com/a.jpg" {
		t.Fatalf("media thumbnail not used: %q", a.ImageURL)
	}
	if want := time.Date(2024, 10, 14, 1, 0, 0, 0, time.UTC); !a.PublishedAt.Equal(want) {
		t.Fatalf("PublishedAt = %v, want %v", a.PublishedAt, want)
	}
	if !items[1].PublishedAt.IsZero() {
		t.Fatalf("item without date should keep zero PublishedAt")
	}
}

func TestGoogleNewsWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(googleRSS))
	}))
	defer srv.Close()

	g := &GoogleNews{Client: srv.Client(), BaseURL: srv.URL}
	items, err := g.Fetch(context.Background(), "건강", 1, 1)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "날짜 없는 기사 제목입니다" {
		t.Fatalf("offset/max not applied: %+v", items)
	}
}

func TestFeedRSSContinuesAfterBrokenFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>카카오 기술 블로그</title>
<item><title>대규모 트래픽 처리 경험기</title><link>https://tech.example.com/1</link><pubDate>Mon, 14 Oct 2024 10:00:00 +0900</pubDate><description>&lt;p&gt;본문 요약&lt;/p&gt;</description></item>
</channel></rss>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := &FeedRSS{URLs: []string{srv.URL + "/broken", srv.URL + "/ok"}, Client: srv.Client()}
	items, err := f.Fetch(context.Background(), "", 10, 0)
	if err == nil {
		t.Fatalf("expected joined error for broken feed")
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item from healthy feed, got %d", len(items))
	}
	if items[0].Source != "카카오 기술 블로그" || items[0].Summary != "본문 요약" {
		t.Fatalf("unexpected mapping: %+v", items[0])
	}
}

const daumHTML = `<html><body>
<ul class="list_info">
  <li>
    <div class="wrap_cont">
      <a class="f_link_b" href="https://someone.tistory.com/12">요즘 인기 있는 <b>혼밥</b> 맛집 정리</a>
      <p class="f_eb desc">혼자 가기 좋은 식당들을 모았습니다.</p>
      <span class="f_nb date">3시간 전</span>
      <a class="f_nb" href="https://someone.tistory.com">맛집탐방</a>
    </div>
  </li>
  <li>
    <div class="wrap_cont">
      <a class="f_link_b" href="/blog/redirect?id=2">서울 카페 투어 기록</a>
      <span class="f_nb date">2024.10.12.</span>
    </div>
  </li>
</ul>
</body></html>`

func TestDaumBlogFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(daumHTML))
	}))
	defer srv.Close()

	d := &DaumBlog{BaseURL: srv.URL + "/search"}
	items, err := d.Fetch(context.Background(), "맛집", 10, 10)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !strings.Contains(gotQuery, "w=blog") || !strings.Contains(gotQuery, "p=2") {
		t.Fatalf("unexpected search query %q", gotQuery)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Title != "요즘 인기 있는 혼밥 맛집 정리" || items[0].Source != "맛집탐방" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[0].PublishedAt.IsZero() {
		t.Fatalf("relative date should resolve to now")
	}
	if !strings.HasPrefix(items[1].URL, srv.URL+"/blog/redirect") {
		t.Fatalf("relative link not resolved: %q", items[1].URL)
	}
	if want := time.Date(2024, 10, 12, 0, 0, 0, 0, normalize.KST); !items[1].PublishedAt.Equal(want) {
		t.Fatalf("PublishedAt = %v, want %v", items[1].PublishedAt, want)
	}
}

func TestArticleDerivedFields(t *testing.T) {
	a := Article{URL: "https://www.example.com/post/1/?utm_campaign=x#c"}
	if a.NormalizedURL() != "https://www.example.com/post/1" {
		t.Fatalf("NormalizedURL = %q", a.NormalizedURL())
	}
	if a.Domain() != "example.com" {
		t.Fatalf("Domain = %q", a.Domain())
	}
	if ValidTitle(" 짧다 ") || !ValidTitle("다섯글자다") {
		t.Fatalf("ValidTitle threshold wrong")
	}
}
