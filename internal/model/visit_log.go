package model

// VisitLog 提交时落库的按链接访问汇总，供注意力分析
type VisitLog struct {
	BaseModel
	ResponseID    uint   `gorm:"index;type:bigint unsigned" json:"responseId"`
	LinkID        string `gorm:"size:8;not null" json:"linkId"`
	AccumulatedMs int64  `gorm:"default:0" json:"accumulatedMs"`
	VisitCount    int    `gorm:"default:0" json:"visitCount"`
	FirstStartMs  int64  `json:"firstStartMs"`
	LastVisitedMs int64  `json:"lastVisitedMs"`
}

func (VisitLog) TableName() string {
	return "visit_logs"
}
