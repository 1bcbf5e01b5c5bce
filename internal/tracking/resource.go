package tracking

import (
	"errors"
	"sync"
	"time"
)

// ErrResourceBlocked 外部资源创建失败（如弹窗被浏览器拦截）
var ErrResourceBlocked = errors.New("external resource blocked")

// ExternalResource 是一个由外部环境托管的资源（新开的窗口/标签页）。
// 打开原语返回 nil 表示被拦截。
type ExternalResource interface {
	URL() string
	// IsClosed 供存活探测轮询：资源是否已经以控制器无法直接
	// 观察到的方式消失
	IsClosed() bool
	Close()
	// SupportsFocusEvents 跨域资源无法绑定 focus/blur 时返回 false，
	// 控制器转为宿主窗口焦点推断
	SupportsFocusEvents() bool
}

// ResourceOpener 资源打开原语
type ResourceOpener func(url string) ExternalResource

// VisitCallbacks 资源生命周期到访问状态的回调
type VisitCallbacks struct {
	OnVisitStart func(nowMs int64)
	OnVisitEnd   func(nowMs int64, totalFocusMs int64)
	OnClosed     func(nowMs int64)
}

// ControllerOptions 控制器参数，零值使用默认
type ControllerOptions struct {
	// ProbeInterval 存活探测周期，<=0 表示不启动探测协程（测试用）
	ProbeInterval time.Duration
	// HostFocusDebounceMs 宿主焦点推断的防抖窗口
	HostFocusDebounceMs int64
}

const defaultHostFocusDebounceMs = 300

// pendingHost 宿主焦点推断中尚未生效的状态转换
type pendingHost struct {
	viewing bool
	atMs    int64
}

type resourceHandle struct {
	gen     uint64
	res     ExternalResource
	timing  TimingSession
	cb      VisitCallbacks
	closed  bool
	loaded  bool
	pending *pendingHost
}

// ResourceController 同一时刻最多持有一个外部资源，将其生命周期
// 翻译为 TimingSession 转换和访问回调。每个资源带有递增的代号，
// 过期代号的事件一律丢弃。
type ResourceController struct {
	mu    sync.Mutex
	clock Clock
	open  ResourceOpener
	opts  ControllerOptions

	gen     uint64
	current *resourceHandle

	probe   Ticker
	done    chan struct{}
	stopped bool

	// StaleEvents 被丢弃的过期事件计数，供监控读取
	StaleEvents int64
}

func NewResourceController(clock Clock, opener ResourceOpener, opts ControllerOptions) *ResourceController {
	if opts.HostFocusDebounceMs <= 0 {
		opts.HostFocusDebounceMs = defaultHostFocusDebounceMs
	}
	c := &ResourceController{
		clock: clock,
		open:  opener,
		opts:  opts,
		done:  make(chan struct{}),
	}
	if opts.ProbeInterval > 0 {
		c.probe = clock.NewTicker(opts.ProbeInterval)
		go c.probeLoop()
	}
	return c
}

// Open 打开外部资源。已有资源会先被强制关闭并结算时长。
// 被拦截时触发 OnVisitEnd(nowMs, 0) 并返回 ErrResourceBlocked。
func (c *ResourceController) Open(url string, nowMs int64, cb VisitCallbacks) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.closeLocked(nowMs)
	}

	res := c.open(url)
	if res == nil {
		if cb.OnVisitEnd != nil {
			cb.OnVisitEnd(nowMs, 0)
		}
		return 0, ErrResourceBlocked
	}

	c.gen++
	c.current = &resourceHandle{
		gen: c.gen,
		res: res,
		cb:  cb,
	}
	return c.gen, nil
}

// Loaded 资源完成加载
func (c *ResourceController) Loaded(gen uint64, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.liveHandle(gen)
	if h == nil {
		return
	}
	h.loaded = true
}

// Focus 资源获得焦点
func (c *ResourceController) Focus(gen uint64, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.liveHandle(gen)
	if h == nil {
		return
	}
	h.pending = nil
	if h.timing.Start(nowMs) && h.cb.OnVisitStart != nil {
		h.cb.OnVisitStart(nowMs)
	}
}

// Blur 资源失去焦点
func (c *ResourceController) Blur(gen uint64, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.liveHandle(gen)
	if h == nil {
		return
	}
	h.pending = nil
	if h.timing.Stop(nowMs) && h.cb.OnVisitEnd != nil {
		h.cb.OnVisitEnd(nowMs, h.timing.AccumulatedMs)
	}
}

// ClosedEvent 资源上报自身已关闭
func (c *ResourceController) ClosedEvent(gen uint64, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.liveHandle(gen) == nil {
		return
	}
	c.closeLocked(nowMs)
}

// Close 显式关闭当前资源，可重复调用
func (c *ResourceController) Close(nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return
	}
	c.closeLocked(nowMs)
}

// HostFocusChanged 宿主窗口焦点变化。仅当当前资源不支持自身焦点
// 事件时生效：宿主失焦≈资源获得焦点。快速切换由防抖窗口吸收，
// 窗口内出现反向转换则两者一并丢弃。
func (c *ResourceController) HostFocusChanged(nowMs int64, hostFocused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.current
	if h == nil || h.closed || h.res.SupportsFocusEvents() {
		return
	}

	c.flushPendingLocked(nowMs)

	viewing := !hostFocused
	if h.pending != nil {
		if h.pending.viewing != viewing {
			// 防抖窗口内的往返抖动，整体作废
			h.pending = nil
		}
		return
	}
	if viewing == h.timing.CurrentlyViewing {
		return
	}
	h.pending = &pendingHost{viewing: viewing, atMs: nowMs}
}

// TotalFocusMs 指定代号资源的已结算注视时长
func (c *ResourceController) TotalFocusMs(gen uint64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.gen != gen {
		return 0
	}
	return c.current.timing.EffectiveDuration(c.clock.NowMs())
}

// StaleEventCount 已丢弃的过期事件数
func (c *ResourceController) StaleEventCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.StaleEvents
}

// IsOpen 是否持有未关闭的资源
func (c *ResourceController) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.current.closed
}

// Stop 停止存活探测并关闭当前资源
func (c *ResourceController) Stop(nowMs int64) {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.done)
		if c.probe != nil {
			c.probe.Stop()
		}
	}
	if c.current != nil {
		c.closeLocked(nowMs)
	}
	c.mu.Unlock()
}

func (c *ResourceController) probeLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.probe.C():
			c.probeTick(c.clock.NowMs())
		}
	}
}

// probeTick 周期性检查：生效超过防抖窗口的焦点推断、以及以
// 不可观察方式消失的资源（视同显式 Close）
func (c *ResourceController) probeTick(nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushPendingLocked(nowMs)
	if c.current != nil && !c.current.closed && c.current.res.IsClosed() {
		c.closeLocked(nowMs)
	}
}

// liveHandle 返回代号匹配且未关闭的资源，否则计为过期事件
func (c *ResourceController) liveHandle(gen uint64) *resourceHandle {
	if c.current == nil || c.current.gen != gen || c.current.closed {
		c.StaleEvents++
		return nil
	}
	return c.current
}

func (c *ResourceController) flushPendingLocked(nowMs int64) {
	h := c.current
	if h == nil || h.closed || h.pending == nil {
		return
	}
	p := h.pending
	if nowMs-p.atMs < c.opts.HostFocusDebounceMs {
		return
	}
	h.pending = nil
	if p.viewing {
		if h.timing.Start(p.atMs) && h.cb.OnVisitStart != nil {
			h.cb.OnVisitStart(p.atMs)
		}
	} else {
		if h.timing.Stop(p.atMs) && h.cb.OnVisitEnd != nil {
			h.cb.OnVisitEnd(p.atMs, h.timing.AccumulatedMs)
		}
	}
}

// closeLocked 结算时长并按固定顺序触发 OnClosed、OnVisitEnd，
// 之后该资源的一切事件都视为过期
func (c *ResourceController) closeLocked(nowMs int64) {
	h := c.current
	if h == nil || h.closed {
		return
	}
	// 挂起的"结束注视"推断仍然生效，避免多计宿主切换后的时间
	if h.pending != nil && !h.pending.viewing {
		h.timing.Stop(h.pending.atMs)
	}
	h.pending = nil
	h.timing.Stop(nowMs)
	h.closed = true
	h.res.Close()
	if h.cb.OnClosed != nil {
		h.cb.OnClosed(nowMs)
	}
	if h.cb.OnVisitEnd != nil {
		h.cb.OnVisitEnd(nowMs, h.timing.AccumulatedMs)
	}
	c.current = nil
}
