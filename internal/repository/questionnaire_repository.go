package repository

import (
	"pairjudge_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionnaireRepository struct {
	DB *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{DB: db}
}

func (r *QuestionnaireRepository) Create(q *model.Questionnaire) error {
	return r.DB.Create(q).Error
}

func (r *QuestionnaireRepository) FindByID(id uint) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.DB.First(&q, id).Error
	return &q, err
}

// FindByIDWithQuestions 预加载题目，按题序排列
func (r *QuestionnaireRepository) FindByIDWithQuestions(id uint) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC, id ASC")
	}).First(&q, id).Error
	return &q, err
}

func (r *QuestionnaireRepository) Update(q *model.Questionnaire) error {
	return r.DB.Save(q).Error
}

func (r *QuestionnaireRepository) UpdateStatus(id uint, status model.QuestionnaireStatus) error {
	return r.DB.Model(&model.Questionnaire{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *QuestionnaireRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Questionnaire{}, id).Error
}

func (r *QuestionnaireRepository) List(page, limit int, status model.QuestionnaireStatus) ([]model.Questionnaire, int64, error) {
	var list []model.Questionnaire
	var total int64

	q := r.DB.Model(&model.Questionnaire{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

// ListActive 标注端可见的问卷
func (r *QuestionnaireRepository) ListActive() ([]model.Questionnaire, error) {
	var list []model.Questionnaire
	err := r.DB.Where("status = ?", model.QuestionnaireActive).Order("id DESC").Find(&list).Error
	return list, err
}
