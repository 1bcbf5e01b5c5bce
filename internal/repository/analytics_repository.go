package repository

import (
	"pairjudge_backend/internal/model"

	"gorm.io/gorm"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// WinnerCountsByQuestion 按题聚合总体胜者分布
func (r *AnalyticsRepository) WinnerCountsByQuestion(questionnaireID uint) ([]model.WinnerCounts, error) {
	var rows []model.WinnerCounts
	err := r.DB.Model(&model.Response{}).
		Select(`question_id,
			SUM(CASE WHEN overall_winner = 'a' THEN 1 ELSE 0 END) AS wins_a,
			SUM(CASE WHEN overall_winner = 'b' THEN 1 ELSE 0 END) AS wins_b,
			SUM(CASE WHEN overall_winner = 'tie' THEN 1 ELSE 0 END) AS ties`).
		Where("questionnaire_id = ?", questionnaireID).
		Group("question_id").
		Scan(&rows).Error
	return rows, err
}

// DimensionCountsForQuestion 某题按维度聚合的胜负分布与平均说明字数
func (r *AnalyticsRepository) DimensionCountsForQuestion(questionID uint) ([]model.DimensionBreakdown, error) {
	var rows []model.DimensionBreakdown
	err := r.DB.Model(&model.DimensionEvaluation{}).
		Select(`dimension_evaluations.dimension_code,
			SUM(CASE WHEN dimension_evaluations.winner = 'a' THEN 1 ELSE 0 END) AS wins_a,
			SUM(CASE WHEN dimension_evaluations.winner = 'b' THEN 1 ELSE 0 END) AS wins_b,
			SUM(CASE WHEN dimension_evaluations.winner = 'tie' THEN 1 ELSE 0 END) AS ties,
			AVG(dimension_evaluations.note_word_count) AS avg_note_words`).
		Joins("INNER JOIN responses ON responses.id = dimension_evaluations.response_id").
		Where("responses.question_id = ? AND responses.deleted_at IS NULL", questionID).
		Group("dimension_evaluations.dimension_code").
		Scan(&rows).Error
	return rows, err
}

type overviewRow struct {
	ResponseCount  int64
	AnnotatorCount int64
	AvgTotalTimeMs float64
	TrapTotal      int64
	TrapFailed     int64
}

// Overview 问卷级汇总指标
func (r *AnalyticsRepository) Overview(questionnaireID uint) (*model.QuestionnaireOverview, error) {
	var row overviewRow
	err := r.DB.Model(&model.Response{}).
		Select(`COUNT(*) AS response_count,
			COUNT(DISTINCT annotator_id) AS annotator_count,
			AVG(total_time_a_ms + total_time_b_ms) AS avg_total_time_ms,
			SUM(CASE WHEN trap_passed IS NOT NULL THEN 1 ELSE 0 END) AS trap_total,
			SUM(CASE WHEN trap_passed = false THEN 1 ELSE 0 END) AS trap_failed`).
		Where("questionnaire_id = ?", questionnaireID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	ov := &model.QuestionnaireOverview{
		QuestionnaireID: questionnaireID,
		ResponseCount:   row.ResponseCount,
		AnnotatorCount:  row.AnnotatorCount,
		AvgTotalTimeMs:  row.AvgTotalTimeMs,
	}
	if row.TrapTotal > 0 {
		ov.TrapFailureRate = float64(row.TrapFailed) / float64(row.TrapTotal)
	}
	return ov, nil
}

// AnnotatorQuality 各标注者的陷阱题通过率与平均注视时长
func (r *AnalyticsRepository) AnnotatorQuality(questionnaireID uint) ([]model.AnnotatorQuality, error) {
	var rows []model.AnnotatorQuality
	err := r.DB.Model(&model.Response{}).
		Select(`responses.annotator_id,
			users.name,
			COUNT(*) AS response_count,
			SUM(CASE WHEN responses.trap_passed IS NOT NULL THEN 1 ELSE 0 END) AS trap_total,
			SUM(CASE WHEN responses.trap_passed = true THEN 1 ELSE 0 END) AS trap_passed,
			AVG(responses.total_time_a_ms) AS avg_view_time_a_ms,
			AVG(responses.total_time_b_ms) AS avg_view_time_b_ms`).
		Joins("INNER JOIN users ON users.id = responses.annotator_id").
		Where("responses.questionnaire_id = ?", questionnaireID).
		Group("responses.annotator_id, users.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].TrapTotal > 0 {
			rows[i].TrapPassRate = float64(rows[i].TrapPassed) / float64(rows[i].TrapTotal)
		}
	}
	return rows, nil
}

// ViewDurations 问卷下全部提交的单链接注视时长，供直方图分桶
func (r *AnalyticsRepository) ViewDurations(questionnaireID uint) ([]int64, error) {
	var durations []int64
	err := r.DB.Model(&model.VisitLog{}).
		Joins("INNER JOIN responses ON responses.id = visit_logs.response_id").
		Where("responses.questionnaire_id = ?", questionnaireID).
		Pluck("visit_logs.accumulated_ms", &durations).Error
	return durations, err
}
