package service

import (
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/util"

	"gorm.io/gorm"
)

// QuestionnaireService 管理端的问卷与题目维护
type QuestionnaireService struct {
	QuestionnaireRepo *repository.QuestionnaireRepository
	QuestionRepo      *repository.QuestionRepository
	ResponseRepo      *repository.ResponseRepository
}

func NewQuestionnaireService(
	questionnaireRepo *repository.QuestionnaireRepository,
	questionRepo *repository.QuestionRepository,
	responseRepo *repository.ResponseRepository,
) *QuestionnaireService {
	return &QuestionnaireService{
		QuestionnaireRepo: questionnaireRepo,
		QuestionRepo:      questionRepo,
		ResponseRepo:      responseRepo,
	}
}

type QuestionnaireInput struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	TaskGroupID   string `json:"taskGroupId"`
	MinViewTimeMs int64  `json:"minViewTimeMs"`
}

func (s *QuestionnaireService) Create(createdBy uint, in *QuestionnaireInput) (*model.Questionnaire, error) {
	q := &model.Questionnaire{
		Title:         in.Title,
		Description:   in.Description,
		TaskGroupID:   in.TaskGroupID,
		MinViewTimeMs: in.MinViewTimeMs,
		Status:        model.QuestionnaireDraft,
		CreatedBy:     createdBy,
	}
	if err := s.QuestionnaireRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionnaireService) Update(id uint, in *QuestionnaireInput) (*model.Questionnaire, error) {
	q, err := s.QuestionnaireRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionnaireNotFound
		}
		return nil, err
	}

	q.Title = in.Title
	q.Description = in.Description
	q.TaskGroupID = in.TaskGroupID
	q.MinViewTimeMs = in.MinViewTimeMs
	if err := s.QuestionnaireRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// SetStatus 状态流转：draft -> active -> closed。激活要求至少一道题。
func (s *QuestionnaireService) SetStatus(id uint, status model.QuestionnaireStatus) error {
	q, err := s.QuestionnaireRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionnaireNotFound
		}
		return err
	}

	if status == model.QuestionnaireActive {
		count, err := s.QuestionRepo.CountByQuestionnaire(id)
		if err != nil {
			return err
		}
		if count == 0 {
			return util.ErrQuestionNotFound
		}
	}

	return s.QuestionnaireRepo.UpdateStatus(q.ID, status)
}

// Delete 已有提交的问卷不可删除
func (s *QuestionnaireService) Delete(id uint) error {
	count, err := s.ResponseRepo.CountByQuestionnaire(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.ErrQuestionnaireHasResponse
	}
	return s.QuestionnaireRepo.Delete(id)
}

func (s *QuestionnaireService) Get(id uint) (*model.Questionnaire, error) {
	q, err := s.QuestionnaireRepo.FindByIDWithQuestions(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionnaireNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionnaireService) List(page, limit int, status model.QuestionnaireStatus) ([]model.Questionnaire, int64, error) {
	return s.QuestionnaireRepo.List(page, limit, status)
}

// ListForAnnotator 标注端可见的问卷与每卷的完成进度
func (s *QuestionnaireService) ListForAnnotator(annotatorID uint) ([]AnnotatorQuestionnaire, error) {
	active, err := s.QuestionnaireRepo.ListActive()
	if err != nil {
		return nil, err
	}

	out := make([]AnnotatorQuestionnaire, 0, len(active))
	for _, q := range active {
		total, err := s.QuestionRepo.CountByQuestionnaire(q.ID)
		if err != nil {
			return nil, err
		}
		done, err := s.ResponseRepo.SubmittedQuestionIDs(annotatorID, q.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, AnnotatorQuestionnaire{
			Questionnaire: q,
			QuestionCount: total,
			DoneCount:     int64(len(done)),
		})
	}
	return out, nil
}

type AnnotatorQuestionnaire struct {
	model.Questionnaire
	QuestionCount int64 `json:"questionCount"`
	DoneCount     int64 `json:"doneCount"`
}

type QuestionInput struct {
	Title              string `json:"title"`
	LinkAURL           string `json:"linkAUrl" binding:"required"`
	LinkBURL           string `json:"linkBUrl" binding:"required"`
	LinkACode          string `json:"linkACode"`
	LinkBCode          string `json:"linkBCode"`
	IsTrap             bool   `json:"isTrap"`
	TrapExpectedWinner string `json:"trapExpectedWinner"`
	OrderIndex         int    `json:"orderIndex"`
}

func (s *QuestionnaireService) AddQuestion(questionnaireID uint, in *QuestionInput) (*model.Question, error) {
	if _, err := s.QuestionnaireRepo.FindByID(questionnaireID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionnaireNotFound
		}
		return nil, err
	}

	q := &model.Question{
		QuestionnaireID:    questionnaireID,
		Title:              in.Title,
		LinkAURL:           in.LinkAURL,
		LinkBURL:           in.LinkBURL,
		LinkACode:          in.LinkACode,
		LinkBCode:          in.LinkBCode,
		IsTrap:             in.IsTrap,
		TrapExpectedWinner: in.TrapExpectedWinner,
		OrderIndex:         in.OrderIndex,
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionnaireService) UpdateQuestion(questionID uint, in *QuestionInput) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	q.Title = in.Title
	q.LinkAURL = in.LinkAURL
	q.LinkBURL = in.LinkBURL
	q.LinkACode = in.LinkACode
	q.LinkBCode = in.LinkBCode
	q.IsTrap = in.IsTrap
	q.TrapExpectedWinner = in.TrapExpectedWinner
	q.OrderIndex = in.OrderIndex
	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionnaireService) DeleteQuestion(questionID uint) error {
	return s.QuestionRepo.Delete(questionID)
}

func (s *QuestionnaireService) GetQuestion(questionID uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// AnnotatorQuestion 标注端视图：不含校验码与陷阱配置
type AnnotatorQuestion struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	LinkAURL      string `json:"linkAUrl"`
	LinkBURL      string `json:"linkBUrl"`
	OrderIndex    int    `json:"orderIndex"`
	RequiresCodes bool   `json:"requiresCodes"`
	Submitted     bool   `json:"submitted"`
}

// QuestionsForAnnotator 某问卷的题目列表，标注端视角
func (s *QuestionnaireService) QuestionsForAnnotator(annotatorID, questionnaireID uint) ([]AnnotatorQuestion, error) {
	questionnaire, err := s.QuestionnaireRepo.FindByID(questionnaireID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionnaireNotFound
		}
		return nil, err
	}
	if questionnaire.Status != model.QuestionnaireActive {
		return nil, util.ErrQuestionnaireNotActive
	}

	questions, err := s.QuestionRepo.ListByQuestionnaire(questionnaireID)
	if err != nil {
		return nil, err
	}
	doneIDs, err := s.ResponseRepo.SubmittedQuestionIDs(annotatorID, questionnaireID)
	if err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(doneIDs))
	for _, id := range doneIDs {
		done[id] = true
	}

	out := make([]AnnotatorQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, AnnotatorQuestion{
			ID:            q.ID,
			Title:         q.Title,
			LinkAURL:      q.LinkAURL,
			LinkBURL:      q.LinkBURL,
			OrderIndex:    q.OrderIndex,
			RequiresCodes: q.HasVerificationCodes(),
			Submitted:     done[q.ID],
		})
	}
	return out, nil
}
