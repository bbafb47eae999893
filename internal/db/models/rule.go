package models

// RuleType 规则类型
type RuleType string

const (
	RuleTypeMenuDir    RuleType = "menu_dir"   // 菜单目录
	RuleTypeMenuItem   RuleType = "menu_item"  // 菜单项
	RuleTypePermission RuleType = "permission" // 权限，绑定后端接口权限
)

// MenuItemType 菜单项打开方式
type MenuItemType string

const (
	MenuItemTypeTab    MenuItemType = "tab"
	MenuItemTypeLink   MenuItemType = "link"
	MenuItemTypeIframe MenuItemType = "iframe"
)

// Rule 规则模型，菜单和权限共用一棵自引用树
//
// name 全局唯一，注册为前端路由名称，同时用作前后端鉴权。
// 当 type=permission 时，name 和对应的后端接口权限名一致。
type Rule struct {
	Model
	ParentID     *uint        `gorm:"index" json:"parent_id"`
	Type         RuleType     `gorm:"size:20;not null;index" json:"type"`
	Title        string       `gorm:"size:100;not null;index" json:"title"`
	Name         string       `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Path         string       `gorm:"size:200" json:"path,omitempty"`
	Icon         string       `gorm:"size:100" json:"icon,omitempty"`
	MenuItemType MenuItemType `gorm:"size:20" json:"menu_item_type,omitempty"`
	URL          string       `gorm:"size:500" json:"url,omitempty"`
	Component    string       `gorm:"size:200" json:"component,omitempty"`
	Remark       string       `gorm:"type:text" json:"remark,omitempty"`
	Cache        bool         `json:"cache"`
	Weight       int          `gorm:"index" json:"weight"`
	Status       bool         `gorm:"not null" json:"status"`
	Parent       *Rule        `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
	Children     []*Rule      `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Roles        []*Role      `gorm:"many2many:role_rules;" json:"roles,omitempty"`
}

// TableName 指定表名
func (Rule) TableName() string {
	return "rules"
}

// IsMenu 是否为菜单类节点（目录或菜单项）
func (r *Rule) IsMenu() bool {
	return r.Type == RuleTypeMenuDir || r.Type == RuleTypeMenuItem
}
