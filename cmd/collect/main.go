package main

import (
	"log"

	"github.com/LJTian/InterestHub/internal/app"
	"github.com/LJTian/InterestHub/internal/config"
	"github.com/LJTian/InterestHub/internal/scheduler"
	"github.com/LJTian/InterestHub/internal/storage"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	orch, cat, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("init pipeline failed: %v", err)
	}

	s, err := scheduler.New(cfg.CronSpec, orch, store, cat.Keys(), app.PipelineConfig(cfg), cfg.CacheTTL)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	// 只执行一轮采集任务后退出
	s.RunOnce()
}
