package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/catalog"
	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/metrics"
	"github.com/LJTian/InterestHub/internal/pipeline"
	"github.com/LJTian/InterestHub/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store API 依赖的存储能力，storage.Store 实现了它
type Store interface {
	GetCached(ctx context.Context, category string) (*storage.CachedResult, error)
	SetCached(ctx context.Context, res *storage.CachedResult, ttl time.Duration) error
	Invalidate(ctx context.Context, categories ...string) error
	CachedTTLs(ctx context.Context, categories []string) map[string]time.Duration
	Upsert(ctx context.Context, items []collector.Article) error
	QueryToday(ctx context.Context, categories []string, ref time.Time) ([]collector.Article, error)
	GetUserCategories(ctx context.Context, uid string) ([]string, error)
	SetUserCategories(ctx context.Context, uid string, categories []string) error
}

// Runner 单个分类的采集入口，pipeline.Orchestrator 实现了它
type Runner interface {
	Run(ctx context.Context, key string, cfg pipeline.Config) ([]collector.Article, error)
}

const uidCookie = "uid"

type Server struct {
	store   Store
	runner  Runner
	catalog *catalog.Catalog
	cfg     pipeline.Config
	ttl     time.Duration
	// now 为空时使用 time.Now
	now func() time.Time
}

func NewServer(store Store, runner Runner, cat *catalog.Catalog, cfg pipeline.Config, ttl time.Duration) *Server {
	return &Server{store: store, runner: runner, catalog: cat, cfg: cfg, ttl: ttl}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", s.stats)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/categories", s.listCategories)
		v1.GET("/news", s.listNews)
		v1.POST("/news/refresh", s.refreshNews)
		v1.GET("/prefs", s.getPrefs)
		v1.PUT("/prefs", s.putPrefs)
		v1.GET("/feed", s.feed)
	}
}

func (s *Server) timeNow() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func (s *Server) health(c *gin.Context) {
	ttls := s.store.CachedTTLs(c.Request.Context(), s.catalog.Keys())
	cached := make(map[string]int, len(ttls))
	for k, d := range ttls {
		cached[k] = int(d.Seconds())
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": s.cfg.Mode, "cached": cached})
}

func (s *Server) stats(c *gin.Context) {
	ok(c, metrics.Global.GetStats())
}

type categoryView struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

func (s *Server) listCategories(c *gin.Context) {
	all := s.catalog.All()
	out := make([]categoryView, 0, len(all))
	for _, cat := range all {
		out = append(out, categoryView{Key: cat.Key, Name: cat.Name, Keywords: cat.Keywords})
	}
	ok(c, out)
}

type newsView struct {
	Category  string              `json:"category"`
	Name      string              `json:"name"`
	FetchedAt time.Time           `json:"fetchedAt"`
	Cached    bool                `json:"cached"`
	Articles  []collector.Article `json:"articles"`
}

// listNews 先读缓存，未命中时同步跑一轮采集并回写库表与缓存
func (s *Server) listNews(c *gin.Context) {
	key := strings.TrimSpace(c.Query("category"))
	if key == "" {
		fail(c, http.StatusBadRequest, "bad_request", "category is required")
		return
	}
	cat, err := s.catalog.Lookup(key)
	if err != nil {
		fail(c, http.StatusNotFound, "not_found", "unknown category")
		return
	}

	ctx := c.Request.Context()
	if res, err := s.store.GetCached(ctx, cat.Key); err == nil {
		ok(c, newsView{Category: cat.Key, Name: cat.Name, FetchedAt: res.FetchedAt, Cached: true, Articles: s.visible(res.Articles)})
		return
	} else if !errors.Is(err, storage.ErrCacheMiss) {
		log.Printf("warn: read cache %s: %v", cat.Key, err)
	}

	items, err := s.runner.Run(ctx, cat.Key, s.cfg)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCategory) {
			fail(c, http.StatusNotFound, "not_found", "unknown category")
			return
		}
		log.Printf("run %s error: %v", cat.Key, err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	res := &storage.CachedResult{Category: cat.Key, Articles: items, FetchedAt: s.timeNow()}
	if err := s.store.Upsert(ctx, items); err != nil {
		log.Printf("save %s batch error: %v", cat.Key, err)
	}
	if err := s.store.SetCached(ctx, res, s.ttl); err != nil {
		log.Printf("warn: write cache %s: %v", cat.Key, err)
	}
	ok(c, newsView{Category: cat.Key, Name: cat.Name, FetchedAt: res.FetchedAt, Articles: s.visible(items)})
}

// refreshNews 清除缓存，下一次请求会重新采集；不带 category 时清除全部
func (s *Server) refreshNews(c *gin.Context) {
	keys := s.catalog.Keys()
	if key := strings.TrimSpace(c.Query("category")); key != "" {
		cat, err := s.catalog.Lookup(key)
		if err != nil {
			fail(c, http.StatusNotFound, "not_found", "unknown category")
			return
		}
		keys = []string{cat.Key}
	}
	if err := s.store.Invalidate(c.Request.Context(), keys...); err != nil {
		log.Printf("invalidate cache error: %v", err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, gin.H{"invalidated": keys})
}

// visitorID 读取 uid cookie，不存在或非法时下发新的
func visitorID(c *gin.Context) string {
	if v, err := c.Cookie(uidCookie); err == nil {
		if id, err := uuid.Parse(v); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	c.SetCookie(uidCookie, id, 365*24*3600, "/", "", false, true)
	return id
}

func (s *Server) getPrefs(c *gin.Context) {
	uid := visitorID(c)
	cats, err := s.store.GetUserCategories(c.Request.Context(), uid)
	if err != nil {
		log.Printf("get prefs %s error: %v", uid, err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if cats == nil {
		cats = []string{}
	}
	ok(c, gin.H{"uid": uid, "categories": cats})
}

type prefsRequest struct {
	Categories []string `json:"categories"`
}

func (s *Server) putPrefs(c *gin.Context) {
	var req prefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request", "invalid body")
		return
	}
	cats := make([]string, 0, len(req.Categories))
	seen := make(map[string]bool, len(req.Categories))
	for _, k := range req.Categories {
		cat, err := s.catalog.Lookup(k)
		if err != nil {
			fail(c, http.StatusBadRequest, "bad_request", "unknown category: "+k)
			return
		}
		if !seen[cat.Key] {
			seen[cat.Key] = true
			cats = append(cats, cat.Key)
		}
	}

	uid := visitorID(c)
	if err := s.store.SetUserCategories(c.Request.Context(), uid, cats); err != nil {
		log.Printf("save prefs %s error: %v", uid, err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	ok(c, gin.H{"uid": uid, "categories": cats})
}

// feed 返回访客关注分类下今天的文章
func (s *Server) feed(c *gin.Context) {
	uid := visitorID(c)
	ctx := c.Request.Context()
	cats, err := s.store.GetUserCategories(ctx, uid)
	if err != nil {
		log.Printf("get prefs %s error: %v", uid, err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	items, err := s.store.QueryToday(ctx, cats, s.timeNow())
	if err != nil {
		log.Printf("query feed %s error: %v", uid, err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if cats == nil {
		cats = []string{}
	}
	ok(c, gin.H{"categories": cats, "articles": s.visible(items)})
}

// visible real 模式下不展示 demo 占位条目
func (s *Server) visible(items []collector.Article) []collector.Article {
	out := make([]collector.Article, 0, len(items))
	for _, it := range items {
		if s.cfg.Mode != pipeline.ModeDemo && pipeline.IsPlaceholder(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}
