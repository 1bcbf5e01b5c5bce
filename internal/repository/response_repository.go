package repository

import (
	"pairjudge_backend/internal/model"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// CreateWithDetails 在单个事务中写入提交、各维度判断与访问汇总，并删除草稿
func (r *ResponseRepository) CreateWithDetails(resp *model.Response, evals []model.DimensionEvaluation, visits []model.VisitLog) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resp).Error; err != nil {
			return err
		}
		for i := range evals {
			evals[i].ResponseID = resp.ID
		}
		if len(evals) > 0 {
			if err := tx.Create(&evals).Error; err != nil {
				return err
			}
		}
		for i := range visits {
			visits[i].ResponseID = resp.ID
		}
		if len(visits) > 0 {
			if err := tx.Create(&visits).Error; err != nil {
				return err
			}
		}
		return tx.Where("annotator_id = ? AND question_id = ?", resp.AnnotatorID, resp.QuestionID).
			Delete(&model.AnswerDraft{}).Error
	})
}

func (r *ResponseRepository) FindByID(id uint) (*model.Response, error) {
	var resp model.Response
	err := r.DB.Preload("Evaluations").First(&resp, id).Error
	return &resp, err
}

func (r *ResponseRepository) FindByAnnotatorAndQuestion(annotatorID, questionID uint) (*model.Response, error) {
	var resp model.Response
	err := r.DB.Where("annotator_id = ? AND question_id = ?", annotatorID, questionID).
		First(&resp).Error
	return &resp, err
}

func (r *ResponseRepository) ExistsForQuestion(annotatorID, questionID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Response{}).
		Where("annotator_id = ? AND question_id = ?", annotatorID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (r *ResponseRepository) CountByQuestionnaire(questionnaireID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Response{}).
		Where("questionnaire_id = ?", questionnaireID).
		Count(&count).Error
	return count, err
}

func (r *ResponseRepository) ListByQuestionnaire(questionnaireID uint) ([]model.Response, error) {
	var list []model.Response
	err := r.DB.Preload("Evaluations").
		Where("questionnaire_id = ?", questionnaireID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// SubmittedQuestionIDs 标注者在某问卷下已提交的题目
func (r *ResponseRepository) SubmittedQuestionIDs(annotatorID, questionnaireID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Response{}).
		Where("annotator_id = ? AND questionnaire_id = ?", annotatorID, questionnaireID).
		Pluck("question_id", &ids).Error
	return ids, err
}

// VisitLogsByResponse 某次提交的访问汇总
func (r *ResponseRepository) VisitLogsByResponse(responseID uint) ([]model.VisitLog, error) {
	var list []model.VisitLog
	err := r.DB.Where("response_id = ?", responseID).Find(&list).Error
	return list, err
}
