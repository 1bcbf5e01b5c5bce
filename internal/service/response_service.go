package service

import (
	"time"

	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/tracking"
	"pairjudge_backend/internal/util"
	"pairjudge_backend/pkg/logger"
	"pairjudge_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResponseService 提交流程：服务端重算资格，通过后在单个事务里
// 落库提交、维度判断与访问汇总，并销毁会话与草稿。
type ResponseService struct {
	ResponseRepo      *repository.ResponseRepository
	QuestionRepo      *repository.QuestionRepository
	QuestionnaireRepo *repository.QuestionnaireRepository
	Tracking          *TrackingService
	Captcha           *CaptchaService
}

func NewResponseService(
	responseRepo *repository.ResponseRepository,
	questionRepo *repository.QuestionRepository,
	questionnaireRepo *repository.QuestionnaireRepository,
	trackingService *TrackingService,
	captchaService *CaptchaService,
) *ResponseService {
	return &ResponseService{
		ResponseRepo:      responseRepo,
		QuestionRepo:      questionRepo,
		QuestionnaireRepo: questionnaireRepo,
		Tracking:          trackingService,
		Captcha:           captchaService,
	}
}

// SubmitInput 提交请求
type SubmitInput struct {
	CaptchaToken string `json:"captchaToken"`
	// RememberDevice 提交成功后签发 15 天免验证 Token
	RememberDevice bool `json:"rememberDevice"`
}

// RejectedError 资格校验失败，携带逐项原因供前端定位
type RejectedError struct {
	Snapshot tracking.EligibilitySnapshot
}

func (e *RejectedError) Error() string { return "submission requirements not met" }

// Submit 校验并落库一次提交。captchaExempt 表示请求携带了有效的
// 免验证设备 Token，此时不再消费人机校验 Token。
func (s *ResponseService) Submit(annotatorID, questionID uint, in *SubmitInput, captchaExempt bool) (*model.Response, error) {
	engine, err := s.Tracking.EngineSession(annotatorID, questionID)
	if err != nil {
		return nil, err
	}

	if exists, err := s.ResponseRepo.ExistsForQuestion(annotatorID, questionID); err != nil {
		return nil, err
	} else if exists {
		return nil, util.ErrAlreadySubmitted
	}

	// 人机校验 Token 单次有效，消费失败直接拒绝
	if !captchaExempt && !s.Captcha.ValidateToken(in.CaptchaToken) {
		monitoring.SubmissionCounter.WithLabelValues("captcha_failed").Inc()
		return nil, util.ErrCaptchaInvalid
	}

	nowMs := time.Now().UnixMilli()
	snap := engine.Eligibility(nowMs)
	if !snap.IsReadyForSubmission {
		monitoring.SubmissionCounter.WithLabelValues("rejected").Inc()
		for _, r := range snap.Reasons {
			monitoring.RejectionReasonCounter.WithLabelValues(string(r.Code)).Inc()
		}
		return nil, &RejectedError{Snapshot: snap}
	}

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

	state := engine.Checkpoint()
	visitA := engine.VisitSnapshot(tracking.LinkA, nowMs)
	visitB := engine.VisitSnapshot(tracking.LinkB, nowMs)
	cfg := engine.Config()

	resp := &model.Response{
		AnnotatorID:        annotatorID,
		QuestionID:         questionID,
		QuestionnaireID:    cfg.QuestionnaireID,
		TaskGroupID:        questionnaire.TaskGroupID,
		OverallWinner:      string(state.OverallWinner),
		TotalTimeAMs:       visitA.EffectiveMs,
		TotalTimeBMs:       visitB.EffectiveMs,
		VisitCountA:        visitA.VisitCount,
		VisitCountB:        visitB.VisitCount,
		VerificationPassed: snap.VerificationPassed,
		CaptchaVerified:    true,
		SubmittedAt:        time.Now(),
	}

	// 陷阱题评分，对标注者不可见
	if question.IsTrap && question.TrapExpectedWinner != "" {
		passed := string(state.OverallWinner) == question.TrapExpectedWinner
		resp.TrapPassed = &passed
	}

	evals := make([]model.DimensionEvaluation, 0, len(state.Judgments))
	for _, j := range state.Judgments {
		evals = append(evals, model.DimensionEvaluation{
			DimensionCode: j.DimensionID,
			Winner:        string(j.Winner),
			Notes:         j.Notes,
			NoteWordCount: snap.NoteVerdicts[j.DimensionID].WordCount,
		})
	}

	visits := []model.VisitLog{
		visitLogOf(tracking.LinkA, visitA),
		visitLogOf(tracking.LinkB, visitB),
	}

	if err := s.ResponseRepo.CreateWithDetails(resp, evals, visits); err != nil {
		monitoring.SubmissionCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	monitoring.SubmissionCounter.WithLabelValues("accepted").Inc()
	s.Tracking.DiscardSession(annotatorID, questionID)

	logger.Log.Info("Annotation submitted",
		zap.Uint("annotatorId", annotatorID),
		zap.Uint("questionId", questionID),
		zap.String("overallWinner", resp.OverallWinner))

	return resp, nil
}

func visitLogOf(linkID string, snap tracking.LinkVisitSnapshot) model.VisitLog {
	return model.VisitLog{
		LinkID:        linkID,
		AccumulatedMs: snap.EffectiveMs,
		VisitCount:    snap.VisitCount,
		FirstStartMs:  snap.FirstSessionStartMs,
		LastVisitedMs: snap.LastVisitedMs,
	}
}

// MyResponse 标注者查看自己的某次提交
func (s *ResponseService) MyResponse(annotatorID, questionID uint) (*model.Response, error) {
	resp, err := s.ResponseRepo.FindByAnnotatorAndQuestion(annotatorID, questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	// 陷阱题结果不外露
	resp.TrapPassed = nil
	return resp, nil
}

// SubmittedQuestionIDs 标注者在某问卷下已完成的题目
func (s *ResponseService) SubmittedQuestionIDs(annotatorID, questionnaireID uint) ([]uint, error) {
	return s.ResponseRepo.SubmittedQuestionIDs(annotatorID, questionnaireID)
}
