package models

import "time"

// UserSource 用户来源
type UserSource string

const (
	UserSourceSystem UserSource = "system" // 后台创建
	UserSourceSignup UserSource = "signup" // 开放注册
)

// User 用户模型
type User struct {
	Model
	Username       string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	HashedPassword string     `gorm:"size:100;not null" json:"-"`
	IsActive       bool       `gorm:"not null;index" json:"is_active"`
	IsSuperuser    bool       `gorm:"index" json:"is_superuser"`
	FullName       string     `gorm:"size:50;index" json:"full_name,omitempty"`
	Source         UserSource `gorm:"size:20;not null" json:"source"`
	LastLoginAt    *time.Time `gorm:"index" json:"last_login_at,omitempty"`
	Roles          []*Role    `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
