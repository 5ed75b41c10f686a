package httpclient

import (
	"context"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

// UserAgent 使用真实浏览器 UA，部分站点会拒绝爬虫 UA
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const drainLimit = 64 << 10

// Transport 带重试的 RoundTripper：每次尝试单独超时，按 Policy 退避
type Transport struct {
	Base   http.RoundTripper
	Policy Policy
	// Jitter 返回 [0,1) 的抖动系数，测试中可替换
	Jitter func() float64
	// Sleep 在 ctx 结束时提前返回错误，测试中可替换
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewTransport 基于默认连接池构造重试 Transport
func NewTransport(p Policy) *Transport {
	return &Transport{
		Base:   http.DefaultTransport.(*http.Transport).Clone(),
		Policy: p,
	}
}

// NewClient 构造一个在整个进程内共享的 http.Client（共享连接池）
func NewClient(t *Transport) *http.Client {
	return &http.Client{Transport: t}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) jitter() float64 {
	if t.Jitter != nil {
		return t.Jitter()
	}
	return rand.Float64()
}

func (t *Transport) sleep(ctx context.Context, d time.Duration) error {
	if t.Sleep != nil {
		return t.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	// 带 body 且无法重放的请求只尝试一次
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	for attempt := 0; ; attempt++ {
		resp, err := t.try(req, attempt)
		outcome := Classify(statusOf(resp), err)
		delay, retry := t.Policy.Next(attempt, outcome, t.jitter())
		if !retry || !replayable {
			return resp, err
		}

		if resp != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
			resp.Body.Close()
		}
		log.Printf("http %s %s retry in %s (attempt %d, status %d, err %v)",
			req.Method, req.URL.Host, delay, attempt+1, statusOf(resp), err)
		if err := t.sleep(req.Context(), delay); err != nil {
			return nil, err
		}
	}
}

func (t *Transport) try(req *http.Request, attempt int) (*http.Response, error) {
	ctx, cancel := req.Context(), context.CancelFunc(func() {})
	if t.Policy.PerTry > 0 {
		ctx, cancel = context.WithTimeout(req.Context(), t.Policy.PerTry)
	}

	r := req.Clone(ctx)
	if attempt > 0 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			cancel()
			return nil, err
		}
		r.Body = body
	}

	resp, err := t.base().RoundTrip(r)
	if err != nil {
		cancel()
		return nil, err
	}
	// 单次超时需要覆盖读取 body 的过程，直到调用方 Close
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
