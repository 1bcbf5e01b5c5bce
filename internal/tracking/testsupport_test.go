package tracking

import (
	"sync"
	"time"
)

// fakeClock 手动推进的时钟，探测 tick 由测试直接调用 probeTick 触发
type fakeClock struct {
	mu sync.Mutex
	ms int64
}

func newFakeClock(startMs int64) *fakeClock {
	return &fakeClock{ms: startMs}
}

func (c *fakeClock) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

func (c *fakeClock) Advance(deltaMs int64) {
	c.mu.Lock()
	c.ms += deltaMs
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{ch: make(chan time.Time)}
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

// fakeResource 可脚本化的外部资源
type fakeResource struct {
	url           string
	closed        bool
	gone          bool // 以不可观察的方式消失，仅 IsClosed 能发现
	supportsFocus bool
}

func (r *fakeResource) URL() string               { return r.url }
func (r *fakeResource) IsClosed() bool            { return r.closed || r.gone }
func (r *fakeResource) Close()                    { r.closed = true }
func (r *fakeResource) SupportsFocusEvents() bool { return r.supportsFocus }

// openerOf 返回固定资源序列的打开原语，nil 表示该次打开被拦截
func openerOf(resources ...*fakeResource) ResourceOpener {
	i := 0
	return func(url string) ExternalResource {
		if i >= len(resources) {
			return nil
		}
		r := resources[i]
		i++
		if r == nil {
			return nil
		}
		r.url = url
		return r
	}
}

// visitRecorder 回调计数器
type visitRecorder struct {
	starts  int
	ends    int
	closes  int
	lastEnd int64
}

func (v *visitRecorder) callbacks() VisitCallbacks {
	return VisitCallbacks{
		OnVisitStart: func(int64) { v.starts++ },
		OnVisitEnd: func(_ int64, total int64) {
			v.ends++
			v.lastEnd = total
		},
		OnClosed: func(int64) { v.closes++ },
	}
}
