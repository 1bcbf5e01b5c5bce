package tracking

// TimingSession 统计单个外部资源的有效注视时长。
// focus/blur/close 事件可能乱序或重复送达，所有状态转换都必须是
// 幂等的：非法转换（重复 start、重复 stop）一律静默忽略。
type TimingSession struct {
	Visited          bool
	AccumulatedMs    int64
	VisitCount       int
	CurrentlyViewing bool

	// currentStartMs 仅在 CurrentlyViewing 时有效
	currentStartMs int64
	FirstStartMs   int64
	LastVisitedMs  int64
	firstSet       bool
}

// RestoreTimingSession 从草稿恢复历史累计数据，恢复后处于未注视状态
func RestoreTimingSession(accumulatedMs int64, visitCount int, firstStartMs, lastVisitedMs int64) *TimingSession {
	if accumulatedMs < 0 {
		accumulatedMs = 0
	}
	if visitCount < 0 {
		visitCount = 0
	}
	return &TimingSession{
		Visited:       visitCount > 0 || accumulatedMs > 0,
		AccumulatedMs: accumulatedMs,
		VisitCount:    visitCount,
		FirstStartMs:  firstStartMs,
		LastVisitedMs: lastVisitedMs,
		firstSet:      visitCount > 0,
	}
}

// Start 开始一次注视。已在注视中则为 no-op，返回 false。
func (s *TimingSession) Start(nowMs int64) bool {
	if s.CurrentlyViewing {
		return false
	}
	s.CurrentlyViewing = true
	s.Visited = true
	s.currentStartMs = nowMs
	s.VisitCount++
	if !s.firstSet {
		s.FirstStartMs = nowMs
		s.firstSet = true
	}
	return true
}

// Stop 结束当前注视并累加时长。未在注视中则为 no-op，返回 false。
func (s *TimingSession) Stop(nowMs int64) bool {
	if !s.CurrentlyViewing {
		return false
	}
	delta := nowMs - s.currentStartMs
	if delta > 0 {
		s.AccumulatedMs += delta
	}
	s.CurrentlyViewing = false
	s.currentStartMs = 0
	s.LastVisitedMs = nowMs
	return true
}

// EffectiveDuration 查询时点的有效时长：累计值加上进行中的区间
func (s *TimingSession) EffectiveDuration(nowMs int64) int64 {
	if !s.CurrentlyViewing {
		return s.AccumulatedMs
	}
	live := nowMs - s.currentStartMs
	if live < 0 {
		live = 0
	}
	return s.AccumulatedMs + live
}

// CurrentSessionStartMs 当前注视起点，仅在注视中有效
func (s *TimingSession) CurrentSessionStartMs() (int64, bool) {
	if !s.CurrentlyViewing {
		return 0, false
	}
	return s.currentStartMs, true
}
