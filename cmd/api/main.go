package main

import (
	"log"

	"github.com/LJTian/InterestHub/internal/api"
	"github.com/LJTian/InterestHub/internal/app"
	"github.com/LJTian/InterestHub/internal/config"
	"github.com/LJTian/InterestHub/internal/scheduler"
	"github.com/LJTian/InterestHub/internal/storage"
	"github.com/gin-gonic/gin"
)

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
	pcfg := app.PipelineConfig(cfg)

	s, err := scheduler.New(cfg.CronSpec, orch, store, cat.Keys(), pcfg, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	// API
	r := gin.Default()
	apiServer := api.NewServer(store, orch, cat, pcfg, cfg.CacheTTL)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
