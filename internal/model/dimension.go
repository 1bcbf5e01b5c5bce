package model

// Dimension 固定的评估维度目录（共 7 个），迁移时种子化，视为不可变配置
type Dimension struct {
	BaseModel
	Code        string `gorm:"size:64;unique;not null" json:"code"`
	Label       string `gorm:"size:100;not null" json:"label"`
	Description string `gorm:"size:255" json:"description"`
	OrderIndex  int    `gorm:"default:0" json:"orderIndex"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (Dimension) TableName() string {
	return "dimensions"
}

// DimensionCount 维度目录的固定大小
const DimensionCount = 7
