package tracking

import (
	"errors"
	"sync"
)

// 固定的两个被比较链接
const (
	LinkA = "a"
	LinkB = "b"
)

var ErrUnknownLink = errors.New("unknown link id")
var ErrUnknownDimension = errors.New("unknown dimension id")

// DraftState 草稿边界交换的状态，引擎只把它当作
// "恢复初始状态"与"检查点"两个钩子的载荷
type DraftState struct {
	Judgments     []DimensionJudgment          `json:"dimensionJudgments"`
	OverallWinner Winner                       `json:"overallWinner"`
	Visits        map[string]VisitState        `json:"visitStatus"`
	Verification  map[string]VerificationEntry `json:"verificationStatus"`
}

// DraftStore 草稿持久化边界
type DraftStore interface {
	LoadDraft(annotatorID, questionID, questionnaireID uint) (*DraftState, error)
	SaveDraft(annotatorID, questionID, questionnaireID uint, state *DraftState) error
}

// SessionConfig 一次答题会话的显式上下文，替代环境全局状态
type SessionConfig struct {
	AnnotatorID     uint
	QuestionID      uint
	QuestionnaireID uint

	LinkURLs      map[string]string
	ExpectedCodes map[string]string
	MinViewTimeMs int64
	DimensionIDs  []string

	Controller ControllerOptions
}

// QuestionSession 单个(标注者,题目)的引擎会话：一个资源控制器、
// 访问聚合、校验码存储与表单状态。HTTP 投递事件来自任意协程，
// 用互斥量保护；逻辑上仍是单标注者驱动。
type QuestionSession struct {
	mu    sync.Mutex
	cfg   SessionConfig
	clock Clock

	visits     *VisitStatusStore
	codes      *VerificationCodeStore
	controller *ResourceController

	judgments map[string]DimensionJudgment
	overall   Winner

	// gen -> 链接，打开资源时登记，事件按代号路由回链接
	genLinks map[uint64]string
	torn     bool
}

func NewQuestionSession(clock Clock, opener ResourceOpener, cfg SessionConfig) *QuestionSession {
	return &QuestionSession{
		cfg:        cfg,
		clock:      clock,
		visits:     NewVisitStatusStore(),
		codes:      NewVerificationCodeStore(),
		controller: NewResourceController(clock, opener, cfg.Controller),
		judgments:  make(map[string]DimensionJudgment, len(cfg.DimensionIDs)),
		genLinks:   make(map[uint64]string),
	}
}

// RestoreDraft 恢复之前保存的进行中状态
func (qs *QuestionSession) RestoreDraft(d *DraftState) {
	if d == nil {
		return
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()
	for _, j := range d.Judgments {
		qs.judgments[j.DimensionID] = j
	}
	qs.overall = d.OverallWinner
	for id, v := range d.Visits {
		qs.visits.Restore(id, v)
	}
	qs.codes.Restore(d.Verification)
}

// OpenLink 打开某链接的外部资源。控制器保证同一时刻至多一个
// 资源打开；被拦截时返回 ErrResourceBlocked，visited 保持 false。
func (qs *QuestionSession) OpenLink(linkID string, nowMs int64) (uint64, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	url, ok := qs.cfg.LinkURLs[linkID]
	if !ok {
		return 0, ErrUnknownLink
	}
	id := linkID
	gen, err := qs.controller.Open(url, nowMs, VisitCallbacks{
		OnVisitStart: func(t int64) { qs.visits.RecordVisitStart(id, t) },
		OnVisitEnd:   func(t int64, _ int64) { qs.visits.RecordVisitEnd(id, t) },
	})
	if err != nil {
		return 0, err
	}
	qs.genLinks[gen] = linkID
	return gen, nil
}

func (qs *QuestionSession) Loaded(gen uint64, nowMs int64)      { qs.controller.Loaded(gen, nowMs) }
func (qs *QuestionSession) Focus(gen uint64, nowMs int64)       { qs.controller.Focus(gen, nowMs) }
func (qs *QuestionSession) Blur(gen uint64, nowMs int64)        { qs.controller.Blur(gen, nowMs) }
func (qs *QuestionSession) ClosedEvent(gen uint64, nowMs int64) { qs.controller.ClosedEvent(gen, nowMs) }
func (qs *QuestionSession) CloseActive(nowMs int64)             { qs.controller.Close(nowMs) }

func (qs *QuestionSession) HostFocusChanged(nowMs int64, hostFocused bool) {
	qs.controller.HostFocusChanged(nowMs, hostFocused)
}

// LinkOfGeneration 代号对应的链接
func (qs *QuestionSession) LinkOfGeneration(gen uint64) (string, bool) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	id, ok := qs.genLinks[gen]
	return id, ok
}

// SetCapturedCode 录入校验码并立即与期望码比对
func (qs *QuestionSession) SetCapturedCode(linkID, code string) (bool, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if _, ok := qs.cfg.LinkURLs[linkID]; !ok {
		return false, ErrUnknownLink
	}
	qs.codes.SetCaptured(linkID, code)
	expected := qs.cfg.ExpectedCodes[linkID]
	if expected == "" {
		return true, nil
	}
	return qs.codes.Validate(linkID, expected), nil
}

// SetJudgment 记录某维度的判断
func (qs *QuestionSession) SetJudgment(dimensionID string, winner Winner, notes string) error {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if !qs.knownDimension(dimensionID) {
		return ErrUnknownDimension
	}
	qs.judgments[dimensionID] = DimensionJudgment{DimensionID: dimensionID, Winner: winner, Notes: notes}
	return nil
}

func (qs *QuestionSession) SetOverallWinner(w Winner) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.overall = w
}

// HasVerificationCodes 该题是否配置了校验码
func (qs *QuestionSession) HasVerificationCodes() bool {
	for _, c := range qs.cfg.ExpectedCodes {
		if c != "" {
			return true
		}
	}
	return false
}

// Eligibility 重算提交资格。纯读操作，可任意频率调用。
func (qs *QuestionSession) Eligibility(nowMs int64) EligibilitySnapshot {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	return EvaluateEligibility(qs.eligibilityInput(nowMs))
}

// VisitSnapshot 某链接的实时访问视图，供 UI 每秒刷新
func (qs *QuestionSession) VisitSnapshot(linkID string, nowMs int64) LinkVisitSnapshot {
	return qs.visits.Snapshot(linkID, nowMs)
}

// Checkpoint 导出当前状态作为草稿载荷
func (qs *QuestionSession) Checkpoint() *DraftState {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	judgments := make([]DimensionJudgment, 0, len(qs.judgments))
	for _, id := range qs.cfg.DimensionIDs {
		if j, ok := qs.judgments[id]; ok {
			judgments = append(judgments, j)
		}
	}
	return &DraftState{
		Judgments:     judgments,
		OverallWinner: qs.overall,
		Visits:        qs.visits.States(),
		Verification:  qs.codes.Entries(),
	}
}

// Teardown 会话结束：停止探测、关闭资源、结算所有进行中的注视
func (qs *QuestionSession) Teardown(nowMs int64) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if qs.torn {
		return
	}
	qs.torn = true
	qs.controller.Stop(nowMs)
	qs.visits.StopAll(nowMs)
}

// StaleEventCount 控制器丢弃的过期事件数
func (qs *QuestionSession) StaleEventCount() int64 {
	return qs.controller.StaleEventCount()
}

func (qs *QuestionSession) Config() SessionConfig {
	return qs.cfg
}

func (qs *QuestionSession) knownDimension(id string) bool {
	for _, d := range qs.cfg.DimensionIDs {
		if d == id {
			return true
		}
	}
	return false
}

func (qs *QuestionSession) eligibilityInput(nowMs int64) EligibilityInput {
	in := EligibilityInput{
		LinkA:                qs.visits.Snapshot(LinkA, nowMs),
		LinkB:                qs.visits.Snapshot(LinkB, nowMs),
		MinViewTimeMs:        qs.cfg.MinViewTimeMs,
		HasVerificationCodes: qs.HasVerificationCodes(),
		DimensionIDs:         qs.cfg.DimensionIDs,
		OverallWinner:        qs.overall,
	}
	in.Judgments = make([]DimensionJudgment, 0, len(qs.judgments))
	for _, j := range qs.judgments {
		in.Judgments = append(in.Judgments, j)
	}
	if in.HasVerificationCodes {
		in.VerificationA = qs.verificationEntry(LinkA)
		in.VerificationB = qs.verificationEntry(LinkB)
	}
	return in
}

// verificationEntry 未配置期望码的链接视为已通过
func (qs *QuestionSession) verificationEntry(linkID string) VerificationEntry {
	if qs.cfg.ExpectedCodes[linkID] == "" {
		return VerificationEntry{IsValid: true}
	}
	e, _ := qs.codes.Entry(linkID)
	return e
}
