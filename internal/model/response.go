package model

import "time"

// Response 一次完整提交的标注结果
type Response struct {
	BaseModel
	AnnotatorID     uint   `gorm:"index;type:bigint unsigned" json:"annotatorId"`
	QuestionID      uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	QuestionnaireID uint   `gorm:"index;type:bigint unsigned" json:"questionnaireId"`
	TaskGroupID     string `gorm:"size:64;index" json:"taskGroupId"`

	// OverallWinner a | b | tie
	OverallWinner string `gorm:"size:8;not null" json:"overallWinner"`

	TotalTimeAMs int64 `json:"totalTimeAMs"`
	TotalTimeBMs int64 `json:"totalTimeBMs"`
	VisitCountA  int   `json:"visitCountA"`
	VisitCountB  int   `json:"visitCountB"`

	VerificationPassed bool `gorm:"default:false" json:"verificationPassed"`
	CaptchaVerified    bool `gorm:"default:false" json:"captchaVerified"`
	// TrapPassed 仅陷阱题有值
	TrapPassed *bool `json:"-"`

	SubmittedAt time.Time `json:"submittedAt"`

	Evaluations []DimensionEvaluation `gorm:"foreignKey:ResponseID" json:"dimensionEvaluations,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

// DimensionEvaluation 提交中单个维度的判断
type DimensionEvaluation struct {
	BaseModel
	ResponseID    uint   `gorm:"index;type:bigint unsigned" json:"responseId"`
	DimensionCode string `gorm:"size:64;index;not null" json:"dimensionCode"`
	Winner        string `gorm:"size:8;not null" json:"winner"`
	Notes         string `gorm:"type:text;not null" json:"notes"`
	NoteWordCount int    `gorm:"default:0" json:"noteWordCount"`
}

func (DimensionEvaluation) TableName() string {
	return "dimension_evaluations"
}
