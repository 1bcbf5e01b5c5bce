package service

import (
	"sync"
	"time"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/tracking"
	"pairjudge_backend/internal/util"
	"pairjudge_backend/pkg/logger"
	"pairjudge_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reportedResource 把客户端上报的外部窗口映射为引擎资源。
// 客户端周期性发心跳；心跳断流超过阈值即视为窗口已消失，
// 由控制器的存活探测收敛。
type reportedResource struct {
	mu                 sync.Mutex
	url                string
	supportsFocus      bool
	clock              tracking.Clock
	heartbeatTimeoutMs int64
	lastHeartbeatMs    int64
	closed             bool
	timeoutReported    bool
}

func (r *reportedResource) URL() string { return r.url }

func (r *reportedResource) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return true
	}
	if r.clock.NowMs()-r.lastHeartbeatMs > r.heartbeatTimeoutMs {
		if !r.timeoutReported {
			r.timeoutReported = true
			monitoring.ProbeCloseCounter.Inc()
		}
		return true
	}
	return false
}

func (r *reportedResource) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *reportedResource) SupportsFocusEvents() bool { return r.supportsFocus }

func (r *reportedResource) heartbeat(nowMs int64) {
	r.mu.Lock()
	r.lastHeartbeatMs = nowMs
	r.mu.Unlock()
}

type sessionKey struct {
	AnnotatorID uint
	QuestionID  uint
}

// annotationSession 服务端持有的单题答题会话
type annotationSession struct {
	engine          *tracking.QuestionSession
	questionnaireID uint

	mu         sync.Mutex
	resources  map[uint64]*reportedResource
	lastActive time.Time
	staleSeen  int64

	// 下一次打开的参数，由事件处理在调用 OpenLink 前设置，
	// opener 闭包在 mu 保护下读取
	nextSupportsFocus bool
	nextBlocked       bool
	lastOpened        *reportedResource
}

func (as *annotationSession) touch() {
	as.mu.Lock()
	as.lastActive = time.Now()
	as.mu.Unlock()
}

func (as *annotationSession) resource(gen uint64) *reportedResource {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.resources[gen]
}

func (as *annotationSession) dropResource(gen uint64) {
	as.mu.Lock()
	delete(as.resources, gen)
	as.mu.Unlock()
}

// TrackingService 管理所有进行中的 (标注者,题目) 会话，把 HTTP 上报的
// 窗口事件投递给各自的引擎会话，并在状态变化后保存草稿检查点。
type TrackingService struct {
	QuestionRepo      *repository.QuestionRepository
	QuestionnaireRepo *repository.QuestionnaireRepository
	DimensionRepo     *repository.DimensionRepository
	ResponseRepo      *repository.ResponseRepository
	Drafts            *DraftService

	mu       sync.Mutex
	sessions map[sessionKey]*annotationSession
	survey   config.SurveyConfig
	clock    tracking.Clock

	stopReaper chan struct{}
	reaperOnce sync.Once
}

func NewTrackingService(
	questionRepo *repository.QuestionRepository,
	questionnaireRepo *repository.QuestionnaireRepository,
	dimensionRepo *repository.DimensionRepository,
	responseRepo *repository.ResponseRepository,
	drafts *DraftService,
	cfg *config.Config,
) *TrackingService {
	s := &TrackingService{
		QuestionRepo:      questionRepo,
		QuestionnaireRepo: questionnaireRepo,
		DimensionRepo:     dimensionRepo,
		ResponseRepo:      responseRepo,
		Drafts:            drafts,
		survey:            cfg.Survey,
		sessions:          make(map[sessionKey]*annotationSession),
		clock:             tracking.SystemClock(),
		stopReaper:        make(chan struct{}),
	}
	go s.reapIdleSessions()
	return s
}

// ApplySurveyConfig 热更新标注流程参数，只影响之后建立的会话
func (s *TrackingService) ApplySurveyConfig(sc config.SurveyConfig) {
	s.mu.Lock()
	s.survey = sc
	s.mu.Unlock()
}

func (s *TrackingService) surveyConfig() config.SurveyConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.survey
}

// SessionView 会话启动时返回给前端的初始视图
type SessionView struct {
	QuestionID      uint                         `json:"questionId"`
	QuestionnaireID uint                         `json:"questionnaireId"`
	MinViewTimeMs   int64                        `json:"minViewTimeMs"`
	DimensionIDs    []string                     `json:"dimensionIds"`
	RequiresCodes   bool                         `json:"requiresCodes"`
	Eligibility     tracking.EligibilitySnapshot `json:"eligibility"`
	Draft           *tracking.DraftState         `json:"draft,omitempty"`
}

// StartSession 建立（或复用）某题的答题会话，恢复已有草稿
func (s *TrackingService) StartSession(annotatorID, questionID uint) (*SessionView, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	questionnaire, err := s.QuestionnaireRepo.FindByID(question.QuestionnaireID)
	if err != nil {
		return nil, err
	}
	if questionnaire.Status != model.QuestionnaireActive {
		return nil, util.ErrQuestionnaireNotActive
	}

	submitted, err := s.ResponseRepo.ExistsForQuestion(annotatorID, questionID)
	if err != nil {
		return nil, err
	}
	if submitted {
		return nil, util.ErrAlreadySubmitted
	}

	key := sessionKey{AnnotatorID: annotatorID, QuestionID: questionID}

	s.mu.Lock()
	as, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		as, err = s.buildSession(annotatorID, question, questionnaire)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if existing, raced := s.sessions[key]; raced {
			as.engine.Teardown(s.clock.NowMs())
			as = existing
		} else {
			s.sessions[key] = as
		}
		s.mu.Unlock()
	}

	as.touch()
	cfg := as.engine.Config()
	return &SessionView{
		QuestionID:      questionID,
		QuestionnaireID: question.QuestionnaireID,
		MinViewTimeMs:   cfg.MinViewTimeMs,
		DimensionIDs:    cfg.DimensionIDs,
		RequiresCodes:   as.engine.HasVerificationCodes(),
		Eligibility:     as.engine.Eligibility(s.clock.NowMs()),
		Draft:           as.engine.Checkpoint(),
	}, nil
}

func (s *TrackingService) buildSession(annotatorID uint, question *model.Question, questionnaire *model.Questionnaire) (*annotationSession, error) {
	dims, err := s.DimensionRepo.ListEnabled()
	if err != nil {
		return nil, err
	}
	dimensionIDs := make([]string, 0, len(dims))
	for _, d := range dims {
		dimensionIDs = append(dimensionIDs, d.Code)
	}

	survey := s.surveyConfig()
	minView := questionnaire.MinViewTimeMs
	if minView <= 0 {
		minView = survey.MinViewTimeMs
	}

	as := &annotationSession{
		questionnaireID: question.QuestionnaireID,
		resources:       make(map[uint64]*reportedResource),
		lastActive:      time.Now(),
	}

	opener := func(url string) tracking.ExternalResource {
		as.mu.Lock()
		defer as.mu.Unlock()
		if as.nextBlocked {
			return nil
		}
		r := &reportedResource{
			url:                url,
			supportsFocus:      as.nextSupportsFocus,
			clock:              s.clock,
			heartbeatTimeoutMs: survey.HeartbeatTimeoutMs,
			lastHeartbeatMs:    s.clock.NowMs(),
		}
		as.lastOpened = r
		return r
	}

	engineCfg := tracking.SessionConfig{
		AnnotatorID:     annotatorID,
		QuestionID:      question.ID,
		QuestionnaireID: question.QuestionnaireID,
		LinkURLs: map[string]string{
			tracking.LinkA: question.LinkAURL,
			tracking.LinkB: question.LinkBURL,
		},
		ExpectedCodes: map[string]string{
			tracking.LinkA: question.LinkACode,
			tracking.LinkB: question.LinkBCode,
		},
		MinViewTimeMs: minView,
		DimensionIDs:  dimensionIDs,
		Controller: tracking.ControllerOptions{
			ProbeInterval:       time.Second,
			HostFocusDebounceMs: survey.HostFocusDebounceMs,
		},
	}

	as.engine = tracking.NewQuestionSession(s.clock, opener, engineCfg)

	draft, err := s.Drafts.LoadDraft(annotatorID, question.ID, question.QuestionnaireID)
	if err != nil {
		return nil, err
	}
	as.engine.RestoreDraft(draft)

	return as, nil
}

func (s *TrackingService) sessionFor(annotatorID, questionID uint) (*annotationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	as, ok := s.sessions[sessionKey{AnnotatorID: annotatorID, QuestionID: questionID}]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return as, nil
}

// EngineSession 暴露给提交流程复用的引擎会话
func (s *TrackingService) EngineSession(annotatorID, questionID uint) (*tracking.QuestionSession, error) {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return nil, err
	}
	return as.engine, nil
}

// WindowEvent 客户端上报的外部窗口事件
type WindowEvent struct {
	Type        string `json:"type" binding:"required"`
	LinkID      string `json:"linkId"`
	Generation  uint64 `json:"generation"`
	TimestampMs int64  `json:"timestampMs" binding:"required"`
	HostFocused bool   `json:"hostFocused"`
	// SupportsFocus 打开事件时由客户端报告新窗口是否可绑定焦点事件
	SupportsFocus *bool `json:"supportsFocus,omitempty"`
}

const (
	EventOpen      = "open"
	EventBlocked   = "blocked"
	EventLoaded    = "loaded"
	EventFocus     = "focus"
	EventBlur      = "blur"
	EventClosed    = "closed"
	EventHeartbeat = "heartbeat"
	EventHostFocus = "host_focus"
)

// OpenResult 打开事件的返回：新资源的代号
type OpenResult struct {
	Generation uint64 `json:"generation"`
}

// ReportEvent 投递一条窗口事件。打开事件返回新代号；过期代号的
// 事件静默丢弃（计数上报）。
func (s *TrackingService) ReportEvent(annotatorID, questionID uint, ev *WindowEvent) (*OpenResult, error) {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return nil, err
	}
	as.touch()

	var result *OpenResult
	switch ev.Type {
	case EventOpen:
		gen, err := s.openLink(as, ev)
		if err != nil {
			return nil, err
		}
		result = &OpenResult{Generation: gen}
	case EventBlocked:
		// 客户端侧弹窗被拦截：等价于打开失败，不产生访问
		if err := s.openBlocked(as, ev); err != nil && err != tracking.ErrResourceBlocked {
			return nil, err
		}
	case EventLoaded:
		as.engine.Loaded(ev.Generation, ev.TimestampMs)
	case EventFocus:
		as.engine.Focus(ev.Generation, ev.TimestampMs)
	case EventBlur:
		as.engine.Blur(ev.Generation, ev.TimestampMs)
	case EventClosed:
		as.engine.ClosedEvent(ev.Generation, ev.TimestampMs)
		as.dropResource(ev.Generation)
	case EventHeartbeat:
		if r := as.resource(ev.Generation); r != nil {
			r.heartbeat(ev.TimestampMs)
		}
	case EventHostFocus:
		as.engine.HostFocusChanged(ev.TimestampMs, ev.HostFocused)
	default:
		return nil, util.ErrUnknownEventType
	}

	s.recordStaleDelta(as)
	s.checkpoint(as)
	return result, nil
}

func (s *TrackingService) openLink(as *annotationSession, ev *WindowEvent) (uint64, error) {
	as.mu.Lock()
	as.nextBlocked = false
	as.nextSupportsFocus = ev.SupportsFocus == nil || *ev.SupportsFocus
	as.mu.Unlock()

	gen, err := as.engine.OpenLink(ev.LinkID, ev.TimestampMs)
	if err != nil {
		return 0, err
	}

	// opener 闭包创建的资源按代号登记，供心跳寻址。同一时刻至多
	// 一个窗口打开，被顶替的旧代号随之清除，迟到的心跳自然落空。
	as.mu.Lock()
	if as.lastOpened != nil {
		as.lastOpened.heartbeat(ev.TimestampMs)
		for old := range as.resources {
			delete(as.resources, old)
		}
		as.resources[gen] = as.lastOpened
		as.lastOpened = nil
	}
	as.mu.Unlock()
	return gen, nil
}

// openBlocked 复用引擎的拦截语义：打开原语返回 nil
func (s *TrackingService) openBlocked(as *annotationSession, ev *WindowEvent) error {
	as.mu.Lock()
	as.nextBlocked = true
	as.mu.Unlock()
	_, err := as.engine.OpenLink(ev.LinkID, ev.TimestampMs)
	return err
}

// SetVerificationCode 录入某链接的校验码
func (s *TrackingService) SetVerificationCode(annotatorID, questionID uint, linkID, code string) (bool, error) {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return false, err
	}
	as.touch()
	ok, err := as.engine.SetCapturedCode(linkID, code)
	if err != nil {
		return false, err
	}
	s.checkpoint(as)
	return ok, nil
}

// SetJudgment 记录某维度的判断
func (s *TrackingService) SetJudgment(annotatorID, questionID uint, dimensionID string, winner tracking.Winner, notes string) error {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return err
	}
	as.touch()
	if err := as.engine.SetJudgment(dimensionID, winner, notes); err != nil {
		return err
	}
	s.checkpoint(as)
	return nil
}

// SetOverallWinner 记录总体胜者
func (s *TrackingService) SetOverallWinner(annotatorID, questionID uint, winner tracking.Winner) error {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return err
	}
	as.touch()
	as.engine.SetOverallWinner(winner)
	s.checkpoint(as)
	return nil
}

// Eligibility 当前提交资格快照
func (s *TrackingService) Eligibility(annotatorID, questionID uint) (*tracking.EligibilitySnapshot, error) {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return nil, err
	}
	snap := as.engine.Eligibility(s.clock.NowMs())
	return &snap, nil
}

// VisitStatus 某链接的实时访问视图
func (s *TrackingService) VisitStatus(annotatorID, questionID uint, linkID string) (*tracking.LinkVisitSnapshot, error) {
	as, err := s.sessionFor(annotatorID, questionID)
	if err != nil {
		return nil, err
	}
	snap := as.engine.VisitSnapshot(linkID, s.clock.NowMs())
	return &snap, nil
}

// EndSession 结束会话：结算时长、保存最终草稿并移除
func (s *TrackingService) EndSession(annotatorID, questionID uint) error {
	key := sessionKey{AnnotatorID: annotatorID, QuestionID: questionID}
	s.mu.Lock()
	as, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	if !ok {
		return util.ErrSessionNotFound
	}
	as.engine.Teardown(s.clock.NowMs())
	s.checkpoint(as)
	return nil
}

// DiscardSession 提交成功后移除会话，不再保存草稿
func (s *TrackingService) DiscardSession(annotatorID, questionID uint) {
	key := sessionKey{AnnotatorID: annotatorID, QuestionID: questionID}
	s.mu.Lock()
	as, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	if ok {
		as.engine.Teardown(s.clock.NowMs())
	}
}

// Shutdown 结算并保存所有会话
func (s *TrackingService) Shutdown() {
	s.reaperOnce.Do(func() { close(s.stopReaper) })
	s.mu.Lock()
	sessions := make([]*annotationSession, 0, len(s.sessions))
	for k, as := range s.sessions {
		sessions = append(sessions, as)
		delete(s.sessions, k)
	}
	s.mu.Unlock()
	for _, as := range sessions {
		as.engine.Teardown(s.clock.NowMs())
		s.checkpoint(as)
	}
}

func (s *TrackingService) checkpoint(as *annotationSession) {
	cfg := as.engine.Config()
	state := as.engine.Checkpoint()
	if err := s.Drafts.SaveDraft(cfg.AnnotatorID, cfg.QuestionID, cfg.QuestionnaireID, state); err != nil {
		logger.Log.Error("Failed to checkpoint draft",
			zap.Uint("annotatorId", cfg.AnnotatorID),
			zap.Uint("questionId", cfg.QuestionID),
			zap.Error(err))
	}
}

func (s *TrackingService) recordStaleDelta(as *annotationSession) {
	total := as.engine.StaleEventCount()
	as.mu.Lock()
	delta := total - as.staleSeen
	as.staleSeen = total
	as.mu.Unlock()
	if delta > 0 {
		monitoring.StaleEventCounter.Add(float64(delta))
	}
}

// reapIdleSessions 回收长时间无活动的会话，先保存草稿再结算
func (s *TrackingService) reapIdleSessions() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopReaper:
			return
		case <-ticker.C:
			var expired []*annotationSession
			s.mu.Lock()
			idle := time.Duration(s.survey.SessionIdleMinutes) * time.Minute
			for k, as := range s.sessions {
				as.mu.Lock()
				inactive := time.Since(as.lastActive)
				as.mu.Unlock()
				if inactive > idle {
					expired = append(expired, as)
					delete(s.sessions, k)
				}
			}
			s.mu.Unlock()
			for _, as := range expired {
				as.engine.Teardown(s.clock.NowMs())
				s.checkpoint(as)
				logger.Log.Info("Reclaimed idle annotation session",
					zap.Uint("questionnaireId", as.questionnaireID))
			}
		}
	}
}
