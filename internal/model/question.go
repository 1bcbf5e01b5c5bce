package model

// Question 一道对比题：两个外部界面示例链接，可选校验码与陷阱题配置
type Question struct {
	BaseModel
	QuestionnaireID uint   `gorm:"index;type:bigint unsigned" json:"questionnaireId"`
	Title           string `gorm:"size:200" json:"title"`
	LinkAURL        string `gorm:"size:512;not null" json:"linkAUrl"`
	LinkBURL        string `gorm:"size:512;not null" json:"linkBUrl"`
	// 嵌在外部页面里的校验码，留空表示该题不做校验
	LinkACode string `gorm:"size:64" json:"-"`
	LinkBCode string `gorm:"size:64" json:"-"`
	// 陷阱题：答案明显，用于识别低投入标注者。对标注者永不可见。
	IsTrap             bool   `gorm:"default:false" json:"-"`
	TrapExpectedWinner string `gorm:"size:8" json:"-"`
	// 链接截图（管理端上传），供后台预览
	LinkAScreenshot string `gorm:"size:512" json:"linkAScreenshot,omitempty"`
	LinkBScreenshot string `gorm:"size:512" json:"linkBScreenshot,omitempty"`
	OrderIndex      int    `gorm:"default:0" json:"orderIndex"`
}

func (Question) TableName() string {
	return "questions"
}

// HasVerificationCodes 该题是否配置了校验码
func (q *Question) HasVerificationCodes() bool {
	return q.LinkACode != "" || q.LinkBCode != ""
}
