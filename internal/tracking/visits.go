package tracking

import "sync"

// LinkVisitSnapshot 某链接在查询时点的访问视图
type LinkVisitSnapshot struct {
	LinkID                string `json:"linkId"`
	Visited               bool   `json:"visited"`
	AccumulatedMs         int64  `json:"accumulatedDurationMs"`
	EffectiveMs           int64  `json:"effectiveDurationMs"`
	VisitCount            int    `json:"visitCount"`
	CurrentlyViewing      bool   `json:"isCurrentlyViewing"`
	CurrentSessionStartMs int64  `json:"currentSessionStartMs,omitempty"`
	FirstSessionStartMs   int64  `json:"firstSessionStartMs,omitempty"`
	LastVisitedMs         int64  `json:"lastVisitedMs,omitempty"`
}

// VisitState 草稿中保存/恢复的访问聚合
type VisitState struct {
	AccumulatedMs int64 `json:"accumulatedDurationMs"`
	VisitCount    int   `json:"visitCount"`
	FirstStartMs  int64 `json:"firstSessionStartMs,omitempty"`
	LastVisitedMs int64 `json:"lastVisitedMs,omitempty"`
}

// VisitStatusStore 按链接聚合访问数据。一个链接在题目生命周期内
// 可能被打开、关闭、重新打开多次，聚合跨越这些资源实例。
type VisitStatusStore struct {
	mu      sync.Mutex
	records map[string]*TimingSession
}

func NewVisitStatusStore() *VisitStatusStore {
	return &VisitStatusStore{records: make(map[string]*TimingSession)}
}

// Restore 从草稿恢复某链接的历史聚合
func (st *VisitStatusStore) Restore(linkID string, state VisitState) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.records[linkID] = RestoreTimingSession(state.AccumulatedMs, state.VisitCount, state.FirstStartMs, state.LastVisitedMs)
}

func (st *VisitStatusStore) RecordVisitStart(linkID string, nowMs int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.record(linkID).Start(nowMs)
}

func (st *VisitStatusStore) RecordVisitEnd(linkID string, nowMs int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.record(linkID).Stop(nowMs)
}

// Snapshot 有效时长按查询时点实时计算，底层数据不因查询而变化
func (st *VisitStatusStore) Snapshot(linkID string, nowMs int64) LinkVisitSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.records[linkID]
	if !ok {
		return LinkVisitSnapshot{LinkID: linkID}
	}
	snap := LinkVisitSnapshot{
		LinkID:              linkID,
		Visited:             s.Visited,
		AccumulatedMs:       s.AccumulatedMs,
		EffectiveMs:         s.EffectiveDuration(nowMs),
		VisitCount:          s.VisitCount,
		CurrentlyViewing:    s.CurrentlyViewing,
		FirstSessionStartMs: s.FirstStartMs,
		LastVisitedMs:       s.LastVisitedMs,
	}
	if start, ok := s.CurrentSessionStartMs(); ok {
		snap.CurrentSessionStartMs = start
	}
	return snap
}

// StopAll 题目卸载/放弃时兜底结算，保证进行中的注视不丢失也不重复
func (st *VisitStatusStore) StopAll(nowMs int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.records {
		s.Stop(nowMs)
	}
}

// States 导出全部聚合，用于草稿保存
func (st *VisitStatusStore) States() map[string]VisitState {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[string]VisitState, len(st.records))
	for id, s := range st.records {
		out[id] = VisitState{
			AccumulatedMs: s.AccumulatedMs,
			VisitCount:    s.VisitCount,
			FirstStartMs:  s.FirstStartMs,
			LastVisitedMs: s.LastVisitedMs,
		}
	}
	return out
}

func (st *VisitStatusStore) record(linkID string) *TimingSession {
	s, ok := st.records[linkID]
	if !ok {
		s = &TimingSession{}
		st.records[linkID] = s
	}
	return s
}
