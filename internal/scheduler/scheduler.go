package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/metrics"
	"github.com/LJTian/InterestHub/internal/pipeline"
	"github.com/LJTian/InterestHub/internal/storage"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Runner 单个分类的采集入口
type Runner interface {
	Run(ctx context.Context, key string, cfg pipeline.Config) ([]collector.Article, error)
}

// Sink 采集结果的去处：入库并刷新缓存
type Sink interface {
	Upsert(ctx context.Context, items []collector.Article) error
	SetCached(ctx context.Context, res *storage.CachedResult, ttl time.Duration) error
}

// 同时采集的分类数
const categoryConcurrency = 3

// 单个分类一轮采集的上限
const categoryTimeout = 2 * time.Minute

type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	sink       Sink
	categories []string
	cfg        pipeline.Config
	ttl        time.Duration
}

func New(spec string, runner Runner, sink Sink, categories []string, cfg pipeline.Config, ttl time.Duration) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:       c,
		runner:     runner,
		sink:       sink,
		categories: categories,
		cfg:        cfg,
		ttl:        ttl,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮采集，避免与用户首次打开页面的请求争抢资源，首屏加载更快
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

// Stop 停止定时任务，等待正在执行的一轮结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start collect job...")
	started := time.Now()

	var g errgroup.Group
	g.SetLimit(categoryConcurrency)
	for _, key := range s.categories {
		key := key
		g.Go(func() error {
			s.collect(key)
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("collect job done (%d categories) in %s", len(s.categories), time.Since(started).Round(time.Millisecond))
}

// collect 单个分类失败只记录日志，不影响其它分类
func (s *Scheduler) collect(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), categoryTimeout)
	defer cancel()

	items, err := s.runner.Run(ctx, key, s.cfg)
	if err != nil {
		log.Printf("run %s error: %v", key, err)
		metrics.Global.RunFailed(err)
		return
	}
	if err := s.sink.Upsert(ctx, items); err != nil {
		log.Printf("save %s batch error: %v", key, err)
		metrics.Global.RunFailed(err)
		return
	}
	res := &storage.CachedResult{Category: key, Articles: items, FetchedAt: time.Now()}
	if err := s.sink.SetCached(ctx, res, s.ttl); err != nil {
		log.Printf("warn: write cache %s: %v", key, err)
	}
	log.Printf("%s done, saved=%d items", key, len(items))
}
