package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCategory 调用方传入了不存在的分类 key，这是唯一需要向上报错的情况
var ErrUnknownCategory = errors.New("unknown category")

// 数据源名称，与 collector 中各 Provider 的 Name() 一致
const (
	SourceGoogleNews = "google_news"
	SourceNaverNews  = "naver_news"
	SourceNaverBlog  = "naver_blog"
	SourceDaumBlog   = "daum_blog"
	SourceFeedRSS    = "feed_rss"
)

// DefaultSources 分类未配置数据源时的默认升级顺序：质量高的源在前
var DefaultSources = []string{SourceGoogleNews, SourceNaverNews, SourceNaverBlog, SourceDaumBlog, SourceFeedRSS}

// Category 静态分类配置
type Category struct {
	Key      string   `yaml:"key" json:"key"`
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	// Sources 有序的数据源列表，编排层按此顺序逐级升级
	Sources []string `yaml:"sources" json:"sources"`
	// GoogleQuery / NaverQuery 可选的扩展查询串，为空时使用第一个关键词
	GoogleQuery string `yaml:"google_query" json:"-"`
	NaverQuery  string `yaml:"naver_query" json:"-"`
}

// PrimaryKeyword 第一个关键词作为主查询词
func (c Category) PrimaryKeyword() string {
	if len(c.Keywords) == 0 {
		return c.Name
	}
	return c.Keywords[0]
}

// QueryFor 返回某个数据源使用的主查询串
func (c Category) QueryFor(source string) string {
	switch {
	case source == SourceGoogleNews && c.GoogleQuery != "":
		return c.GoogleQuery
	case strings.HasPrefix(source, "naver_") && c.NaverQuery != "":
		return c.NaverQuery
	default:
		return c.PrimaryKeyword()
	}
}

// Catalog 有序的分类表
type Catalog struct {
	order []string
	byKey map[string]Category
}

// New 按给定顺序构造分类表，重复 key 以后者为准
func New(categories []Category) *Catalog {
	c := &Catalog{byKey: make(map[string]Category, len(categories))}
	for _, cat := range categories {
		c.put(cat)
	}
	return c
}

func (c *Catalog) put(cat Category) {
	cat.Key = strings.TrimSpace(cat.Key)
	if cat.Key == "" {
		return
	}
	if len(cat.Sources) == 0 {
		cat.Sources = DefaultSources
	}
	if _, ok := c.byKey[cat.Key]; !ok {
		c.order = append(c.order, cat.Key)
	}
	c.byKey[cat.Key] = cat
}

// Lookup 按 key 查找分类
func (c *Catalog) Lookup(key string) (Category, error) {
	cat, ok := c.byKey[strings.TrimSpace(key)]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return cat, nil
}

// All 按配置顺序返回所有分类
func (c *Catalog) All() []Category {
	out := make([]Category, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out
}

// Keys 按配置顺序返回所有 key
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

type fileConfig struct {
	Categories []Category `yaml:"categories"`
}

// Load 读取 YAML 分类文件并覆盖/追加到默认分类表；path 为空时返回默认表
//
//	categories:
//	  - key: health
//	    name: 건강·운동
//	    keywords: [건강, 운동]
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg fileConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	for _, cat := range cfg.Categories {
		c.put(cat)
	}
	return c, nil
}
