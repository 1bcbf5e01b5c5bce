package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimingSessionIdempotentStart(t *testing.T) {
	s := &TimingSession{}

	assert.True(t, s.Start(1000))
	assert.False(t, s.Start(2000), "second start must be a no-op")
	assert.True(t, s.Stop(3000))

	assert.Equal(t, int64(2000), s.AccumulatedMs, "duration counts from the first start")
	assert.Equal(t, 1, s.VisitCount)
}

func TestTimingSessionIdempotentStop(t *testing.T) {
	s := &TimingSession{}
	s.Start(1000)
	s.Stop(2500)

	assert.False(t, s.Stop(9000), "second stop must be a no-op")
	assert.Equal(t, int64(1500), s.AccumulatedMs)
	assert.Equal(t, int64(2500), s.LastVisitedMs)
}

func TestTimingSessionNeverNegative(t *testing.T) {
	s := &TimingSession{}

	// 乱序时间戳也不得产生负时长
	s.Start(5000)
	s.Stop(4000)
	assert.GreaterOrEqual(t, s.AccumulatedMs, int64(0))

	prev := s.AccumulatedMs
	timestamps := []int64{6000, 7000, 7000, 8000, 12000, 12500}
	for i, ts := range timestamps {
		if i%2 == 0 {
			s.Start(ts)
		} else {
			s.Stop(ts)
		}
		assert.GreaterOrEqual(t, s.AccumulatedMs, prev, "accumulated duration is monotonically non-decreasing")
		prev = s.AccumulatedMs
	}
}

func TestTimingSessionEffectiveDurationFormula(t *testing.T) {
	s := &TimingSession{}
	s.Start(1000)
	s.Stop(3000)
	s.Start(10000)

	// 注视中：累计 + (now - 本次起点)
	assert.Equal(t, int64(2000+4000), s.EffectiveDuration(14000))

	s.Stop(14000)
	// 刚结束：无 live 分量
	assert.Equal(t, int64(6000), s.EffectiveDuration(14000))
	assert.Equal(t, s.AccumulatedMs, s.EffectiveDuration(99999))
}

func TestTimingSessionFirstStartPreserved(t *testing.T) {
	s := &TimingSession{}
	s.Start(1000)
	s.Stop(2000)
	s.Start(5000)
	s.Stop(6000)

	assert.Equal(t, int64(1000), s.FirstStartMs, "first session start is set once and never overwritten")
	assert.Equal(t, 2, s.VisitCount)
}

func TestRestoreTimingSession(t *testing.T) {
	s := RestoreTimingSession(8000, 3, 1000, 9000)

	assert.True(t, s.Visited)
	assert.False(t, s.CurrentlyViewing)
	assert.Equal(t, int64(8000), s.EffectiveDuration(99999))

	s.Start(10000)
	s.Stop(12000)
	assert.Equal(t, int64(10000), s.AccumulatedMs)
	assert.Equal(t, 4, s.VisitCount)
	assert.Equal(t, int64(1000), s.FirstStartMs)
}
