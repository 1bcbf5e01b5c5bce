package model

import "time"

type UserRole string

const (
	Annotator UserRole = "annotator"
	Admin     UserRole = "admin"
)

// User 标注者或管理员。LastSeen 由 ActivityMiddleware 异步刷新，
// 管理端据此判断标注者是否还在作答。
type User struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;unique;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"type:enum('annotator','admin');default:'annotator'" json:"role"`
	Language  string     `gorm:"size:10;default:'en'" json:"language"`
	Disabled  bool       `gorm:"default:false" json:"disabled"`
	LastLogin *time.Time `json:"lastLogin"`
	LastSeen  *time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
