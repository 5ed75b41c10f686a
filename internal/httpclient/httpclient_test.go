package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPolicyNextRateLimitedIsExponential(t *testing.T) {
	p := Policy{MaxAttempts: 3, Base: time.Second}

	d0, ok := p.Next(0, OutcomeRateLimited, 0.5)
	if !ok || d0 != 1500*time.Millisecond {
		t.Fatalf("Next(0, 429) = %v, %v; want 1.5s, true", d0, ok)
	}
	d1, ok := p.Next(1, OutcomeRateLimited, 0)
	if !ok || d1 != 2*time.Second {
		t.Fatalf("Next(1, 429) = %v, %v; want 2s, true", d1, ok)
	}
	// 第三次失败后放弃
	if _, ok := p.Next(2, OutcomeRateLimited, 0); ok {
		t.Fatalf("Next(2, 429) should give up after 3 attempts")
	}
}

func TestPolicyNextTransientIsLinear(t *testing.T) {
	p := Policy{MaxAttempts: 3, Base: time.Second}
	d0, _ := p.Next(0, OutcomeTransient, 0.9)
	d1, _ := p.Next(1, OutcomeTransient, 0.9)
	if d0 != time.Second || d1 != 2*time.Second {
		t.Fatalf("linear backoff = %v, %v; want 1s, 2s", d0, d1)
	}
	if _, ok := p.Next(0, OutcomePermanent, 0); ok {
		t.Fatalf("permanent outcome should not retry")
	}
	if _, ok := p.Next(0, OutcomeOK, 0); ok {
		t.Fatalf("ok outcome should not retry")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		status int
		err    error
		want   Outcome
	}{
		{200, nil, OutcomeOK},
		{429, nil, OutcomeRateLimited},
		{503, nil, OutcomeTransient},
		{404, nil, OutcomePermanent},
		{0, context.DeadlineExceeded, OutcomeTransient},
		{0, errors.New("connection reset"), OutcomeTransient},
		{0, context.Canceled, OutcomePermanent},
	}
	for _, c := range cases {
		if got := Classify(c.status, c.err); got != c.want {
			t.Fatalf("Classify(%d, %v) = %v, want %v", c.status, c.err, got, c.want)
		}
	}
}

func newTestTransport(sleeps *[]time.Duration) *Transport {
	tr := NewTransport(Policy{MaxAttempts: 3, Base: time.Second, PerTry: 2 * time.Second})
	tr.Jitter = func() float64 { return 0 }
	tr.Sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return tr
}

func TestTransportRetriesOn429ThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("missing browser user agent: %q", r.Header.Get("User-Agent"))
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := &http.Client{Transport: newTestTransport(&sleeps)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if len(sleeps) != 1 || sleeps[0] != time.Second {
		t.Fatalf("sleeps = %v, want [1s]", sleeps)
	}
}

func TestTransportGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := &http.Client{Transport: newTestTransport(&sleeps)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	resp.Body.Close()

	// 最后一次的响应原样交给调用方
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(sleeps) != 2 || sleeps[0] != time.Second || sleeps[1] != 2*time.Second {
		t.Fatalf("sleeps = %v, want [1s 2s]", sleeps)
	}
}

func TestTransportDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var sleeps []time.Duration
	client := &http.Client{Transport: newTestTransport(&sleeps)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	resp.Body.Close()
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestTransportPerTryTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	tr := NewTransport(Policy{MaxAttempts: 2, Base: time.Millisecond, PerTry: 50 * time.Millisecond})
	client := &http.Client{Transport: tr}

	start := time.Now()
	_, err := client.Get(srv.URL)
	if err == nil {
		t.Fatalf("expected timeout error from hung server")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("hung request took %v, per-try timeout not applied", elapsed)
	}
}

func TestWithContextCancelsInFlightRequest(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	// 模拟 colly：请求本身不带 ctx
	client := &http.Client{Transport: WithContext(ctx, NewTransport(DefaultPolicy()))}
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := client.Get(srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("cancelled request took %v", elapsed)
	}

	// 已取消的 ctx 不再发请求
	if _, err := client.Get(srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for done ctx, got %v", err)
	}
}
