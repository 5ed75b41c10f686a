package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 缓存不存在或已过期
var ErrCacheMiss = errors.New("storage: cache miss")

// DefaultCacheTTL 与页面刷新节奏一致
const DefaultCacheTTL = 5 * time.Minute

// CachedResult 某个分类最近一次的采集结果
type CachedResult struct {
	Category  string              `json:"category"`
	Articles  []collector.Article `json:"articles"`
	FetchedAt time.Time           `json:"fetchedAt"`
}

func cacheKey(category string) string {
	return "interest:news:" + category
}

// GetCached 读取分类缓存，未命中返回 ErrCacheMiss
func (s *Store) GetCached(ctx context.Context, category string) (*CachedResult, error) {
	if s.Redis == nil {
		return nil, ErrCacheMiss
	}
	bs, err := s.Redis.Get(ctx, cacheKey(category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get cache %s: %w", category, err)
	}
	return decodeCached(bs)
}

// SetCached 写入分类缓存，ttl<=0 时使用默认值
func (s *Store) SetCached(ctx context.Context, res *CachedResult, ttl time.Duration) error {
	if s.Redis == nil || res == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	bs, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("storage: encode cache %s: %w", res.Category, err)
	}
	return s.Redis.Set(ctx, cacheKey(res.Category), bs, ttl).Err()
}

// Invalidate 删除指定分类的缓存
func (s *Store) Invalidate(ctx context.Context, categories ...string) error {
	if s.Redis == nil || len(categories) == 0 {
		return nil
	}
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		keys = append(keys, cacheKey(c))
	}
	return s.Redis.Del(ctx, keys...).Err()
}

// CachedTTLs 返回仍在缓存中的分类及剩余 TTL，用于健康检查
func (s *Store) CachedTTLs(ctx context.Context, categories []string) map[string]time.Duration {
	out := make(map[string]time.Duration)
	if s.Redis == nil {
		return out
	}
	for _, c := range categories {
		d, err := s.Redis.TTL(ctx, cacheKey(c)).Result()
		if err != nil || d <= 0 {
			continue
		}
		out[c] = d
	}
	return out
}

func decodeCached(bs []byte) (*CachedResult, error) {
	var res CachedResult
	if err := json.Unmarshal(bs, &res); err != nil {
		// 旧格式或损坏的数据按未命中处理
		return nil, ErrCacheMiss
	}
	return &res, nil
}
