package service

import (
	"encoding/json"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/tracking"

	"gorm.io/gorm"
)

// DraftService 把引擎的草稿边界落到数据库，状态整体按 JSON 存取
type DraftService struct {
	DraftRepo *repository.DraftRepository
}

func NewDraftService(draftRepo *repository.DraftRepository) *DraftService {
	return &DraftService{DraftRepo: draftRepo}
}

var _ tracking.DraftStore = (*DraftService)(nil)

// LoadDraft 读取草稿，不存在时返回 (nil, nil)
func (s *DraftService) LoadDraft(annotatorID, questionID, questionnaireID uint) (*tracking.DraftState, error) {
	d, err := s.DraftRepo.Find(annotatorID, questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var state tracking.DraftState
	if err := json.Unmarshal([]byte(d.State), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *DraftService) SaveDraft(annotatorID, questionID, questionnaireID uint, state *tracking.DraftState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.DraftRepo.Upsert(&model.AnswerDraft{
		AnnotatorID:     annotatorID,
		QuestionID:      questionID,
		QuestionnaireID: questionnaireID,
		State:           string(payload),
	})
}

// ListDrafts 标注者的全部进行中草稿
func (s *DraftService) ListDrafts(annotatorID uint) ([]model.AnswerDraft, error) {
	return s.DraftRepo.ListByAnnotator(annotatorID)
}
