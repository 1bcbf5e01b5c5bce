package service

import (
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"

	"gorm.io/gorm"
)

// AnalyticsService 管理端分析：偏好分布、置信度、维度拆解与标注质量
type AnalyticsService struct {
	AnalyticsRepo     *repository.AnalyticsRepository
	QuestionnaireRepo *repository.QuestionnaireRepository
	QuestionRepo      *repository.QuestionRepository
	DimensionRepo     *repository.DimensionRepository
}

func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	questionnaireRepo *repository.QuestionnaireRepository,
	questionRepo *repository.QuestionRepository,
	dimensionRepo *repository.DimensionRepository,
) *AnalyticsService {
	return &AnalyticsService{
		AnalyticsRepo:     analyticsRepo,
		QuestionnaireRepo: questionnaireRepo,
		QuestionRepo:      questionRepo,
		DimensionRepo:     dimensionRepo,
	}
}

func (s *AnalyticsService) Overview(questionnaireID uint) (*model.QuestionnaireOverview, error) {
	questionnaire, err := s.QuestionnaireRepo.FindByID(questionnaireID)
	if err != nil {
		return nil, err
	}

	ov, err := s.AnalyticsRepo.Overview(questionnaireID)
	if err != nil {
		return nil, err
	}
	ov.Title = questionnaire.Title

	count, err := s.QuestionRepo.CountByQuestionnaire(questionnaireID)
	if err != nil {
		return nil, err
	}
	ov.QuestionCount = count
	return ov, nil
}

// WinnerShares 每题的 A/B/tie 分布，附 Wilson 区间与显著性
func (s *AnalyticsService) WinnerShares(questionnaireID uint) ([]model.WinnerShare, error) {
	counts, err := s.AnalyticsRepo.WinnerCountsByQuestion(questionnaireID)
	if err != nil {
		return nil, err
	}

	shares := make([]model.WinnerShare, 0, len(counts))
	for _, c := range counts {
		shares = append(shares, buildWinnerShare(c))
	}
	return shares, nil
}

func buildWinnerShare(c model.WinnerCounts) model.WinnerShare {
	total := c.WinsA + c.WinsB + c.Ties
	share := model.WinnerShare{
		QuestionID: c.QuestionID,
		Total:      total,
		WinsA:      c.WinsA,
		WinsB:      c.WinsB,
		Ties:       c.Ties,
	}
	if total == 0 {
		return share
	}

	share.ShareA = float64(c.WinsA) / float64(total)
	share.ShareB = float64(c.WinsB) / float64(total)
	share.CILowerA, share.CIUpperA = wilsonInterval(c.WinsA, total, 0.95)

	// 平局不参与显著性比较
	decisive := c.WinsA + c.WinsB
	if c.WinsA >= c.WinsB {
		share.LeadingWinner = "a"
		share.Confidence = twoProportionTest(c.WinsA, decisive, c.WinsB, decisive)
	} else {
		share.LeadingWinner = "b"
		share.Confidence = twoProportionTest(c.WinsB, decisive, c.WinsA, decisive)
	}
	if c.WinsA == c.WinsB {
		share.LeadingWinner = "tie"
	}
	share.Confident = share.Confidence >= 0.95
	return share
}

// DimensionBreakdown 某题按维度的胜负拆解，附维度显示名
func (s *AnalyticsService) DimensionBreakdown(questionID uint) ([]model.DimensionBreakdown, error) {
	if _, err := s.QuestionRepo.FindByID(questionID); err != nil {
		return nil, err
	}

	rows, err := s.AnalyticsRepo.DimensionCountsForQuestion(questionID)
	if err != nil {
		return nil, err
	}

	dims, err := s.DimensionRepo.ListEnabled()
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	labels := make(map[string]string, len(dims))
	for _, d := range dims {
		labels[d.Code] = d.Label
	}
	for i := range rows {
		rows[i].Label = labels[rows[i].DimensionCode]
	}
	return rows, nil
}

func (s *AnalyticsService) AnnotatorQuality(questionnaireID uint) ([]model.AnnotatorQuality, error) {
	return s.AnalyticsRepo.AnnotatorQuality(questionnaireID)
}

// DurationHistogram 单链接注视时长分布，固定指数分桶
func (s *AnalyticsService) DurationHistogram(questionnaireID uint) ([]model.DurationBucket, error) {
	durations, err := s.AnalyticsRepo.ViewDurations(questionnaireID)
	if err != nil {
		return nil, err
	}

	bounds := []int64{5000, 10000, 20000, 40000, 80000, 160000, 320000}
	buckets := make([]model.DurationBucket, len(bounds)+1)
	for i, b := range bounds {
		buckets[i].UpperBoundMs = b
	}
	// 末桶收纳其余全部
	buckets[len(bounds)].UpperBoundMs = -1

	for _, d := range durations {
		placed := false
		for i, b := range bounds {
			if d < b {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			buckets[len(bounds)].Count++
		}
	}
	return buckets, nil
}
