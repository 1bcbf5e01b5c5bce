package model

// AnswerDraft 进行中答案的检查点，按(标注者,题目)各保存一份。
// 引擎状态以 JSON 形式整体存取，结构见 tracking.DraftState。
type AnswerDraft struct {
	BaseModel
	AnnotatorID     uint   `gorm:"uniqueIndex:uniq_draft;type:bigint unsigned" json:"annotatorId"`
	QuestionID      uint   `gorm:"uniqueIndex:uniq_draft;type:bigint unsigned" json:"questionId"`
	QuestionnaireID uint   `gorm:"index;type:bigint unsigned" json:"questionnaireId"`
	State           string `gorm:"type:json" json:"state"`
}

func (AnswerDraft) TableName() string {
	return "answer_drafts"
}
