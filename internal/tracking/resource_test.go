package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(resources ...*fakeResource) (*ResourceController, *fakeClock) {
	clock := newFakeClock(0)
	c := NewResourceController(clock, openerOf(resources...), ControllerOptions{})
	return c, clock
}

func TestControllerFocusBlurTiming(t *testing.T) {
	c, _ := newTestController(&fakeResource{supportsFocus: true})
	rec := &visitRecorder{}

	gen, err := c.Open("https://example.com/a", 0, rec.callbacks())
	require.NoError(t, err)

	c.Focus(gen, 1000)
	c.Blur(gen, 4000)

	assert.Equal(t, 1, rec.starts)
	assert.Equal(t, 1, rec.ends)
	assert.Equal(t, int64(3000), rec.lastEnd)
}

func TestControllerStaleEventImmunity(t *testing.T) {
	r1 := &fakeResource{supportsFocus: true}
	r2 := &fakeResource{supportsFocus: true}
	c, _ := newTestController(r1, r2)

	rec1 := &visitRecorder{}
	gen1, err := c.Open("https://example.com/a", 0, rec1.callbacks())
	require.NoError(t, err)
	c.Focus(gen1, 1000)

	// 未显式关闭 r1 就打开 r2：r1 被强制关闭，时长恰好结算一次
	rec2 := &visitRecorder{}
	gen2, err := c.Open("https://example.com/b", 5000, rec2.callbacks())
	require.NoError(t, err)

	assert.True(t, r1.closed)
	assert.Equal(t, 1, rec1.closes)
	assert.Equal(t, 1, rec1.ends)
	assert.Equal(t, int64(4000), rec1.lastEnd)

	// 迟到的 r1 事件必须被忽略
	c.Focus(gen1, 6000)
	c.Blur(gen1, 7000)
	c.ClosedEvent(gen1, 8000)
	assert.Equal(t, 1, rec1.ends, "stale events must not re-settle r1")
	assert.Equal(t, int64(3), c.StaleEventCount())

	c.Focus(gen2, 6000)
	c.Blur(gen2, 9000)
	assert.Equal(t, int64(3000), rec2.lastEnd)
}

func TestControllerCloseIdempotent(t *testing.T) {
	c, _ := newTestController(&fakeResource{supportsFocus: true})
	rec := &visitRecorder{}

	gen, err := c.Open("https://example.com/a", 0, rec.callbacks())
	require.NoError(t, err)
	c.Focus(gen, 1000)

	c.Close(2000)
	c.Close(3000)

	assert.Equal(t, 1, rec.closes, "OnClosed fires exactly once")
	assert.Equal(t, int64(1000), rec.lastEnd)
	assert.False(t, c.IsOpen())
}

func TestControllerPopupBlocked(t *testing.T) {
	c, _ := newTestController(nil)
	rec := &visitRecorder{}

	gen, err := c.Open("https://example.com/a", 0, rec.callbacks())
	assert.ErrorIs(t, err, ErrResourceBlocked)
	assert.Zero(t, gen)
	// 拦截不是静默成功：以 onVisitEnd(0) 告知调用方
	assert.Equal(t, 1, rec.ends)
	assert.Equal(t, int64(0), rec.lastEnd)
	assert.Equal(t, 0, rec.starts)
}

func TestControllerProbeDetectsDisappearedResource(t *testing.T) {
	r := &fakeResource{supportsFocus: true}
	c, _ := newTestController(r)
	rec := &visitRecorder{}

	gen, err := c.Open("https://example.com/a", 0, rec.callbacks())
	require.NoError(t, err)
	c.Focus(gen, 1000)

	// 用户在应用控制之外关掉了窗口
	r.gone = true
	c.probeTick(6000)

	assert.Equal(t, 1, rec.closes)
	assert.Equal(t, int64(5000), rec.lastEnd)
	assert.False(t, c.IsOpen())

	// 探测关闭与显式关闭等价，再次关闭是 no-op
	c.Close(9000)
	assert.Equal(t, 1, rec.closes)
}

func TestControllerHostFocusFallback(t *testing.T) {
	// 跨域资源无法上报自身焦点，退化为宿主窗口焦点推断
	c, _ := newTestController(&fakeResource{supportsFocus: false})
	rec := &visitRecorder{}

	_, err := c.Open("https://example.com/a", 0, rec.callbacks())
	require.NoError(t, err)

	// 宿主失焦 ≈ 资源获得焦点，防抖窗口过后生效
	c.HostFocusChanged(1000, false)
	assert.Equal(t, 0, rec.starts, "transition held during debounce window")
	c.probeTick(2000)
	assert.Equal(t, 1, rec.starts)

	// 宿主重新获得焦点 ≈ 资源失焦
	c.HostFocusChanged(5000, true)
	c.probeTick(6000)
	assert.Equal(t, 1, rec.ends)
	assert.Equal(t, int64(4000), rec.lastEnd, "duration measured from the original event time")
}

func TestControllerHostFocusDebounceCancels(t *testing.T) {
	c, _ := newTestController(&fakeResource{supportsFocus: false})
	rec := &visitRecorder{}

	_, err := c.Open("https://example.com/a", 0, rec.callbacks())
	require.NoError(t, err)

	// 快速 alt-tab：窗口内往返，整体作废
	c.HostFocusChanged(1000, false)
	c.HostFocusChanged(1100, true)
	c.probeTick(3000)

	assert.Equal(t, 0, rec.starts)
	assert.Equal(t, 0, rec.ends)
}

func TestControllerCloseSettlesPendingStop(t *testing.T) {
	c, _ := newTestController(&fakeResource{supportsFocus: false})
	rec := &visitRecorder{}

	_, err := c.Open("https://example.com/a", 0, rec.callbacks())
	require.NoError(t, err)

	c.HostFocusChanged(1000, false)
	c.probeTick(2000)
	require.Equal(t, 1, rec.starts)

	// 尚在防抖中的"结束注视"推断在关闭时仍按原时间结算
	c.HostFocusChanged(5000, true)
	c.Close(5100)

	assert.Equal(t, int64(4000), rec.lastEnd)
}
