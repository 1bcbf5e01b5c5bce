package repository

import (
	"pairjudge_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) ListByQuestionnaire(questionnaireID uint) ([]model.Question, error) {
	var list []model.Question
	err := r.DB.Where("questionnaire_id = ?", questionnaireID).
		Order("order_index ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *QuestionRepository) CountByQuestionnaire(questionnaireID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("questionnaire_id = ?", questionnaireID).
		Count(&count).Error
	return count, err
}

type DimensionRepository struct {
	DB *gorm.DB
}

func NewDimensionRepository(db *gorm.DB) *DimensionRepository {
	return &DimensionRepository{DB: db}
}

// ListEnabled 按题序返回启用的维度
func (r *DimensionRepository) ListEnabled() ([]model.Dimension, error) {
	var list []model.Dimension
	err := r.DB.Where("enabled = ?", true).Order("order_index ASC").Find(&list).Error
	return list, err
}

func (r *DimensionRepository) FindByCode(code string) (*model.Dimension, error) {
	var d model.Dimension
	err := r.DB.Where("code = ?", code).First(&d).Error
	return &d, err
}
