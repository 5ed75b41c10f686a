package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/normalize"
	"github.com/LJTian/InterestHub/internal/processor"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Article 入库的文章，同一链接在不同分类下各存一份
type Article struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	Category string `gorm:"size:64;uniqueIndex:idx_category_url;index" json:"category"`
	URL      string `gorm:"size:1024;uniqueIndex:idx_category_url" json:"url"`
	Title    string `gorm:"size:512" json:"title"`
	Source   string `gorm:"size:128" json:"source"`
	ImageURL string `gorm:"size:1024" json:"imageUrl"`
	Summary  string `gorm:"size:1000" json:"summary"`

	PublishedAt time.Time `gorm:"index" json:"publishedAt"`
	// 日期 YYYY-MM-DD（KST），用于“今天”的查询
	PublishedDate string `gorm:"size:10;index" json:"publishedDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPref 访客关注的分类，UID 来自 cookie
type UserPref struct {
	UID        string         `gorm:"primaryKey;size:36" json:"uid"`
	Categories datatypes.JSON `gorm:"type:jsonb" json:"categories"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Article{}, &UserPref{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// 数据库字段长度
const (
	titleMaxRunes   = 512
	summaryMaxRunes = 1000
)

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// dateKey 按 KST 自然日生成 YYYY-MM-DD
func dateKey(t time.Time) string {
	return t.In(normalize.KST).Format("2006-01-02")
}

// newRecord 把流水线输出转换为库表记录
func newRecord(a collector.Article) *Article {
	return &Article{
		ID:            processor.ArticleID(a.Category, a.URL),
		Category:      a.Category,
		URL:           a.URL,
		Title:         truncateRunesDB(toValidUTF8(a.Title), titleMaxRunes),
		Source:        truncateRunesDB(toValidUTF8(a.Source), 128),
		ImageURL:      a.ImageURL,
		Summary:       truncateRunesDB(toValidUTF8(a.Summary), summaryMaxRunes),
		PublishedAt:   a.PublishedAt,
		PublishedDate: dateKey(a.PublishedAt),
	}
}

// ToArticle 库表记录转回流水线结构
func (r Article) ToArticle() collector.Article {
	return collector.Article{
		Title:       r.Title,
		URL:         r.URL,
		Source:      r.Source,
		PublishedAt: r.PublishedAt.In(normalize.KST),
		ImageURL:    r.ImageURL,
		Summary:     r.Summary,
		Category:    r.Category,
	}
}

// Upsert 以 (分类, URL) 为幂等键保存，已存在时用最新的元数据覆盖
func (s *Store) Upsert(ctx context.Context, items []collector.Article) error {
	db := s.DB.WithContext(ctx)
	for _, it := range items {
		if it.URL == "" || it.Category == "" {
			continue
		}
		rec := newRecord(it)
		if err := db.Where("id = ?", rec.ID).FirstOrCreate(rec).Error; err != nil {
			return fmt.Errorf("storage: upsert %s: %w", it.URL, err)
		}
		if err := db.Model(rec).Updates(map[string]any{
			"title":          rec.Title,
			"source":         rec.Source,
			"image_url":      rec.ImageURL,
			"summary":        rec.Summary,
			"published_at":   rec.PublishedAt,
			"published_date": rec.PublishedDate,
		}).Error; err != nil {
			log.Printf("warn: update article %s: %v", it.URL, err)
		}
	}
	return nil
}

// QueryToday 返回 ref 当天（KST）指定分类下的文章，按发布时间倒序
func (s *Store) QueryToday(ctx context.Context, categories []string, ref time.Time) ([]collector.Article, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	var rows []Article
	err := s.DB.WithContext(ctx).
		Where("category IN ? AND published_date = ?", categories, dateKey(ref)).
		Order("published_at DESC").
		Limit(500).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("storage: query today: %w", err)
	}
	out := make([]collector.Article, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToArticle())
	}
	return out, nil
}

// GetUserCategories 未保存过偏好时返回 nil
func (s *Store) GetUserCategories(ctx context.Context, uid string) ([]string, error) {
	var pref UserPref
	err := s.DB.WithContext(ctx).Where("uid = ?", uid).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get prefs %s: %w", uid, err)
	}
	return decodeCategories(pref.Categories)
}

// SetUserCategories 覆盖保存访客关注的分类
func (s *Store) SetUserCategories(ctx context.Context, uid string, categories []string) error {
	bs, err := encodeCategories(categories)
	if err != nil {
		return err
	}
	db := s.DB.WithContext(ctx)
	pref := &UserPref{UID: uid, Categories: bs}
	if err := db.Where("uid = ?", uid).FirstOrCreate(pref).Error; err != nil {
		return fmt.Errorf("storage: save prefs %s: %w", uid, err)
	}
	return db.Model(pref).Update("categories", bs).Error
}

func encodeCategories(categories []string) (datatypes.JSON, error) {
	if categories == nil {
		categories = []string{}
	}
	bs, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("storage: encode categories: %w", err)
	}
	return datatypes.JSON(bs), nil
}

func decodeCategories(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("storage: decode categories: %w", err)
	}
	return out, nil
}
