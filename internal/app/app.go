// Package app 组装采集流水线，供 cmd/api 与 cmd/collect 共用
package app

import (
	"fmt"

	"github.com/LJTian/InterestHub/internal/catalog"
	"github.com/LJTian/InterestHub/internal/collector"
	"github.com/LJTian/InterestHub/internal/config"
	"github.com/LJTian/InterestHub/internal/enricher"
	"github.com/LJTian/InterestHub/internal/httpclient"
	"github.com/LJTian/InterestHub/internal/pipeline"
	"github.com/LJTian/InterestHub/internal/scraper"
)

// PipelineConfig 把环境配置映射为单次采集参数
func PipelineConfig(cfg *config.Config) pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.Lookback = cfg.Lookback
	pc.Mode = pipeline.ParseMode(cfg.DeployMode)
	return pc
}

// Build 加载分类表并注册所有数据源。所有数据源共用同一个 http.Client（连接池、重试策略）。
func Build(cfg *config.Config) (*pipeline.Orchestrator, *catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.CategoriesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load categories: %w", err)
	}

	policy := httpclient.DefaultPolicy()
	if cfg.HTTPTimeout > 0 {
		policy.PerTry = cfg.HTTPTimeout
	}
	transport := httpclient.NewTransport(policy)
	client := httpclient.NewClient(transport)

	providers := []collector.Provider{
		&collector.GoogleNews{Client: client, ResolveLinks: cfg.ResolveGoogleLinks},
		&collector.Naver{Kind: collector.NaverNews, ClientID: cfg.NaverClientID, ClientSecret: cfg.NaverClientSecret, Client: client},
		&collector.Naver{Kind: collector.NaverBlog, ClientID: cfg.NaverClientID, ClientSecret: cfg.NaverClientSecret, Client: client},
		&collector.DaumBlog{Transport: transport},
		&collector.FeedRSS{URLs: cfg.FeedURLs, Client: client},
	}

	enr := enricher.New(scraper.New(transport, cfg.HTTPTimeout), cfg.EnrichConcurrency)
	return pipeline.New(cat, enr, providers...), cat, nil
}
