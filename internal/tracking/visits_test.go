package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitStatusStoreSnapshotFormula(t *testing.T) {
	st := NewVisitStatusStore()
	st.RecordVisitStart(LinkA, 1000)

	// 注视中：accumulated + (now - sessionStart)
	snap := st.Snapshot(LinkA, 4000)
	assert.True(t, snap.CurrentlyViewing)
	assert.Equal(t, int64(3000), snap.EffectiveMs)
	assert.Equal(t, int64(0), snap.AccumulatedMs)
	assert.Equal(t, int64(1000), snap.CurrentSessionStartMs)

	// 结束后立刻查询：无 live 分量
	st.RecordVisitEnd(LinkA, 4000)
	snap = st.Snapshot(LinkA, 4000)
	assert.False(t, snap.CurrentlyViewing)
	assert.Equal(t, snap.AccumulatedMs, snap.EffectiveMs)
	assert.Equal(t, int64(3000), snap.AccumulatedMs)
	assert.Zero(t, snap.CurrentSessionStartMs)
}

func TestVisitStatusStoreUnknownLink(t *testing.T) {
	st := NewVisitStatusStore()
	snap := st.Snapshot("missing", 1000)
	assert.False(t, snap.Visited)
	assert.Zero(t, snap.EffectiveMs)
}

func TestVisitStatusStoreAggregatesReopen(t *testing.T) {
	st := NewVisitStatusStore()
	// 同一链接被打开、关闭、再打开
	st.RecordVisitStart(LinkB, 0)
	st.RecordVisitEnd(LinkB, 2000)
	st.RecordVisitStart(LinkB, 10000)
	st.RecordVisitEnd(LinkB, 13000)

	snap := st.Snapshot(LinkB, 20000)
	assert.Equal(t, int64(5000), snap.AccumulatedMs)
	assert.Equal(t, 2, snap.VisitCount)
	assert.Equal(t, int64(0), snap.FirstSessionStartMs)
	assert.Equal(t, int64(13000), snap.LastVisitedMs)
}

func TestVisitStatusStoreStopAll(t *testing.T) {
	st := NewVisitStatusStore()
	st.RecordVisitStart(LinkA, 0)
	st.RecordVisitStart(LinkB, 1000)

	// 卸载时兜底结算，不丢失也不重复计时
	st.StopAll(5000)
	a := st.Snapshot(LinkA, 9000)
	b := st.Snapshot(LinkB, 9000)
	assert.Equal(t, int64(5000), a.EffectiveMs)
	assert.Equal(t, int64(4000), b.EffectiveMs)
	assert.False(t, a.CurrentlyViewing)

	st.StopAll(7000)
	assert.Equal(t, int64(5000), st.Snapshot(LinkA, 9000).EffectiveMs)
}

func TestVisitStatusStoreRestore(t *testing.T) {
	st := NewVisitStatusStore()
	st.Restore(LinkA, VisitState{AccumulatedMs: 8000, VisitCount: 2, FirstStartMs: 100, LastVisitedMs: 9000})

	snap := st.Snapshot(LinkA, 10000)
	assert.True(t, snap.Visited)
	assert.Equal(t, int64(8000), snap.EffectiveMs)

	states := st.States()
	assert.Equal(t, int64(8000), states[LinkA].AccumulatedMs)
	assert.Equal(t, 2, states[LinkA].VisitCount)
}
