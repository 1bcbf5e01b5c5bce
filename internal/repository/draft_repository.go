package repository

import (
	"pairjudge_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftRepository struct {
	DB *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{DB: db}
}

// Upsert 按 (annotator, question) 覆盖保存
func (r *DraftRepository) Upsert(d *model.AnswerDraft) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "annotator_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "questionnaire_id", "updated_at"}),
	}).Create(d).Error
}

func (r *DraftRepository) Find(annotatorID, questionID uint) (*model.AnswerDraft, error) {
	var d model.AnswerDraft
	err := r.DB.Where("annotator_id = ? AND question_id = ?", annotatorID, questionID).
		First(&d).Error
	return &d, err
}

func (r *DraftRepository) ListByAnnotator(annotatorID uint) ([]model.AnswerDraft, error) {
	var list []model.AnswerDraft
	err := r.DB.Where("annotator_id = ?", annotatorID).Find(&list).Error
	return list, err
}
