package model

type QuestionnaireStatus string

const (
	QuestionnaireDraft  QuestionnaireStatus = "draft"
	QuestionnaireActive QuestionnaireStatus = "active"
	QuestionnaireClosed QuestionnaireStatus = "closed"
)

// swagger:model Questionnaire
type Questionnaire struct {
	BaseModel
	Title       string              `gorm:"size:200;not null" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	Status      QuestionnaireStatus `gorm:"type:enum('draft','active','closed');default:'draft'" json:"status"`
	TaskGroupID string              `gorm:"size:64;index" json:"taskGroupId"`
	// MinViewTimeMs 每个链接的最短注视时长，0 表示使用全局配置
	MinViewTimeMs int64      `gorm:"default:0" json:"minViewTimeMs"`
	CreatedBy     uint       `gorm:"index;type:bigint unsigned" json:"createdBy"`
	Questions     []Question `gorm:"foreignKey:QuestionnaireID" json:"questions,omitempty"`
}

func (Questionnaire) TableName() string {
	return "questionnaires"
}
