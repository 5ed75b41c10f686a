package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Outcome 单次请求的结果分类
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeRateLimited HTTP 429
	OutcomeRateLimited
	// OutcomeTransient 超时、连接错误、5xx
	OutcomeTransient
	// OutcomePermanent 其它 4xx 或不可重试的错误
	OutcomePermanent
)

// Policy 重试策略：尝试次数、基础间隔、单次请求超时
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	PerTry      time.Duration
}

// DefaultPolicy 最多 3 次，429 按 2^n 秒退避，超时按 n 秒线性退避，单次 8 秒超时
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Base: time.Second, PerTry: 8 * time.Second}
}

// Next 是一个纯函数：给定已失败的尝试序号（从 0 开始）、结果分类与抖动系数 [0,1)，
// 返回下次重试前的等待时间；retry=false 表示放弃。
func (p Policy) Next(attempt int, o Outcome, jitter float64) (delay time.Duration, retry bool) {
	if o == OutcomeOK || o == OutcomePermanent {
		return 0, false
	}
	if attempt+1 >= p.MaxAttempts {
		return 0, false
	}
	switch o {
	case OutcomeRateLimited:
		return p.Base*time.Duration(1<<attempt) + time.Duration(jitter*float64(p.Base)), true
	default:
		return p.Base * time.Duration(attempt+1), true
	}
}

// Classify 根据状态码与错误判断结果分类
func Classify(status int, err error) Outcome {
	if err != nil {
		// 调用方主动取消不重试；超时、连接重置等传输层错误都按瞬时错误处理
		if errors.Is(err, context.Canceled) {
			return OutcomePermanent
		}
		return OutcomeTransient
	}
	switch {
	case status == http.StatusTooManyRequests:
		return OutcomeRateLimited
	case status >= 500:
		return OutcomeTransient
	case status >= 400:
		return OutcomePermanent
	default:
		return OutcomeOK
	}
}
