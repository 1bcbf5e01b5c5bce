package model

// 管理端分析接口的聚合 DTO

// QuestionnaireOverview 问卷级汇总
type QuestionnaireOverview struct {
	QuestionnaireID uint    `json:"questionnaireId"`
	Title           string  `json:"title"`
	QuestionCount   int64   `json:"questionCount"`
	ResponseCount   int64   `json:"responseCount"`
	AnnotatorCount  int64   `json:"annotatorCount"`
	AvgTotalTimeMs  float64 `json:"avgTotalTimeMs"`
	TrapFailureRate float64 `json:"trapFailureRate"`
}

// WinnerShare 某题（或某维度）上 A/B/tie 的份额与置信度
type WinnerShare struct {
	QuestionID    uint    `json:"questionId"`
	Total         int64   `json:"total"`
	WinsA         int64   `json:"winsA"`
	WinsB         int64   `json:"winsB"`
	Ties          int64   `json:"ties"`
	ShareA        float64 `json:"shareA"`
	ShareB        float64 `json:"shareB"`
	CILowerA      float64 `json:"ciLowerA"`
	CIUpperA      float64 `json:"ciUpperA"`
	Confidence    float64 `json:"confidence"`
	Confident     bool    `json:"confident"`
	LeadingWinner string  `json:"leadingWinner"`
}

// DimensionBreakdown 按维度的胜负分布
type DimensionBreakdown struct {
	DimensionCode string  `json:"dimensionCode"`
	Label         string  `json:"label"`
	WinsA         int64   `json:"winsA"`
	WinsB         int64   `json:"winsB"`
	Ties          int64   `json:"ties"`
	AvgNoteWords  float64 `json:"avgNoteWords"`
}

// AnnotatorQuality 标注者质量视图（陷阱题通过率、平均注视时长）
type AnnotatorQuality struct {
	AnnotatorID    uint    `json:"annotatorId"`
	Name           string  `json:"name"`
	ResponseCount  int64   `json:"responseCount"`
	TrapTotal      int64   `json:"trapTotal"`
	TrapPassed     int64   `json:"trapPassed"`
	TrapPassRate   float64 `json:"trapPassRate"`
	AvgViewTimeAMs float64 `json:"avgViewTimeAMs"`
	AvgViewTimeBMs float64 `json:"avgViewTimeBMs"`
}

// DurationBucket 注视时长分布直方图的一个桶
type DurationBucket struct {
	UpperBoundMs int64 `json:"upperBoundMs"`
	Count        int64 `json:"count"`
}

// WinnerCounts 数据库聚合查询的中间结果
type WinnerCounts struct {
	QuestionID uint  `json:"questionId"`
	WinsA      int64 `json:"winsA"`
	WinsB      int64 `json:"winsB"`
	Ties       int64 `json:"ties"`
}
