package httpclient

import (
	"context"
	"net/http"
)

// contextTransport 把调用方的 ctx 绑定到每个请求上。
// colly 发出的请求不带 ctx，经过它之后 ctx 取消会中断进行中的抓取。
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

// WithContext 返回一个使用 ctx 发请求的 RoundTripper，rt 为空时使用 http.DefaultTransport
func WithContext(ctx context.Context, rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &contextTransport{ctx: ctx, base: rt}
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
