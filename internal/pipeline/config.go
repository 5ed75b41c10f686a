package pipeline

import (
	"strings"
	"time"

	"github.com/LJTian/InterestHub/internal/processor"
)

// DeployMode 结果不足时的兜底策略，两种策略互斥，不会混用
type DeployMode string

const (
	// ModeReal 只返回真实数据，不足目标数时原样返回
	ModeReal DeployMode = "real"
	// ModeDemo 用明显的占位条目补足到目标数，仅用于演示
	ModeDemo DeployMode = "demo"
)

// ParseMode 非 demo 的值一律按 real 处理
func ParseMode(s string) DeployMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeDemo)) {
		return ModeDemo
	}
	return ModeReal
}

// Config 单次分类采集的参数
type Config struct {
	// Lookback 时间窗口长度，0 表示“今天”
	Lookback        time.Duration
	FutureTolerance time.Duration
	// Target 原始候选数低于该值时继续升级数据源
	Target int
	// MaxItems 最终输出上限
	MaxItems int
	// PerSourceMax 每个数据源单次请求的条数
	PerSourceMax int
	// ExpansionMax 扩展关键词单次请求的条数
	ExpansionMax int
	// MaxKeywords 参与查询的关键词个数（含主关键词）
	MaxKeywords int
	Mode        DeployMode
}

// DefaultConfig 3 天窗口、目标 10 条、最多 30 条
func DefaultConfig() Config {
	return Config{
		Lookback:        72 * time.Hour,
		FutureTolerance: processor.DefaultFutureTolerance,
		Target:          10,
		MaxItems:        30,
		PerSourceMax:    15,
		ExpansionMax:    10,
		MaxKeywords:     3,
		Mode:            ModeReal,
	}
}

// withDefaults 把零值字段换成默认值（Lookback 的 0 有含义，保持不变）
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FutureTolerance <= 0 {
		c.FutureTolerance = d.FutureTolerance
	}
	if c.Target <= 0 {
		c.Target = d.Target
	}
	if c.MaxItems <= 0 {
		c.MaxItems = d.MaxItems
	}
	if c.PerSourceMax <= 0 {
		c.PerSourceMax = d.PerSourceMax
	}
	if c.ExpansionMax <= 0 {
		c.ExpansionMax = d.ExpansionMax
	}
	if c.MaxKeywords <= 0 {
		c.MaxKeywords = d.MaxKeywords
	}
	if c.Mode == "" {
		c.Mode = ModeReal
	}
	return c
}
