package tracking

import "time"

// Clock 为引擎提供毫秒时间戳和定时器，便于测试中替换
type Clock interface {
	NowMs() int64
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemClock struct{}

// SystemClock 返回基于 time 包的真实时钟
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }
