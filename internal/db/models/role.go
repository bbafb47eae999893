package models

// Role 角色模型
type Role struct {
	Model
	Name        string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Permissions []*Rule `gorm:"many2many:role_rules;" json:"permissions,omitempty"`
	Users       []*User `gorm:"many2many:user_roles;" json:"users,omitempty"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}
