package rule

import (
	"errors"
	"fmt"

	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"gorm.io/gorm"
)

// HomePath 主页菜单的路由路径，作为规则树已初始化的哨兵
const HomePath = "home"

// DefaultTree 默认规则树的声明。纯数据，不含已持久化的记录，
// 由 Seed 深度优先插入并在父节点落库后回填 parent_id。
func DefaultTree() []*CreateInput {
	return []*CreateInput{
		{
			Type:         models.RuleTypeMenuItem,
			Title:        "主页",
			Name:         auth.ApiPermissionUsersHome.Resource(),
			Path:         HomePath,
			Icon:         "el-icon-HomeFilled",
			MenuItemType: models.MenuItemTypeTab,
			Component:    "/src/views/home.vue",
			Remark:       "主页banner文案",
			Cache:        true,
			Weight:       999,
			Children: []*CreateInput{
				{Type: models.RuleTypePermission, Title: "查看", Name: auth.ApiPermissionUsersHome.Read().Name},
			},
		},
		{
			Type:   models.RuleTypeMenuDir,
			Title:  "常规管理",
			Name:   "routine",
			Path:   "routine",
			Icon:   "fa fa-gear",
			Weight: 2,
			Children: []*CreateInput{
				{
					Type:         models.RuleTypeMenuItem,
					Title:        "个人信息",
					Name:         auth.ApiPermissionUsersMe.Resource(),
					Path:         "routine/user-info",
					Icon:         "el-icon-UserFilled",
					MenuItemType: models.MenuItemTypeTab,
					Component:    "/src/views/routine/userInfo.vue",
					Weight:       1,
					Children: []*CreateInput{
						{Type: models.RuleTypePermission, Title: "查看", Name: auth.ApiPermissionUsersMe.Read().Name},
						{Type: models.RuleTypePermission, Title: "编辑", Name: auth.ApiPermissionUsersMe.Update().Name},
						{Type: models.RuleTypePermission, Title: "删除", Name: auth.ApiPermissionUsersMe.Delete().Name},
					},
				},
			},
		},
		{
			Type:   models.RuleTypeMenuDir,
			Title:  "系统管理",
			Name:   "system",
			Path:   "system",
			Icon:   "fa fa-cogs",
			Weight: 1,
			Children: []*CreateInput{
				{
					Type:         models.RuleTypeMenuItem,
					Title:        "规则管理",
					Name:         auth.ApiPermissionRules.Resource(),
					Path:         "system/rules",
					Icon:         "el-icon-Grid",
					MenuItemType: models.MenuItemTypeTab,
					Component:    "/src/views/system/rule/index.vue",
					Weight:       100,
					Children: []*CreateInput{
						{Type: models.RuleTypePermission, Title: "查看", Name: auth.ApiPermissionRules.Read().Name},
						{Type: models.RuleTypePermission, Title: "添加", Name: auth.ApiPermissionRules.Create().Name},
						{Type: models.RuleTypePermission, Title: "编辑", Name: auth.ApiPermissionRules.Update().Name},
						{Type: models.RuleTypePermission, Title: "删除", Name: auth.ApiPermissionRules.Delete().Name},
					},
				},
				{
					Type:         models.RuleTypeMenuItem,
					Title:        "角色管理",
					Name:         auth.ApiPermissionRoles.Resource(),
					Path:         "system/roles",
					Icon:         "fa fa-group",
					MenuItemType: models.MenuItemTypeTab,
					Component:    "/src/views/system/role/index.vue",
					Weight:       99,
					Children: []*CreateInput{
						{Type: models.RuleTypePermission, Title: "查看", Name: auth.ApiPermissionRoles.Read().Name},
						{Type: models.RuleTypePermission, Title: "添加", Name: auth.ApiPermissionRoles.Create().Name},
						{Type: models.RuleTypePermission, Title: "编辑", Name: auth.ApiPermissionRoles.Update().Name},
						{Type: models.RuleTypePermission, Title: "删除", Name: auth.ApiPermissionRoles.Delete().Name},
					},
				},
				{
					Type:         models.RuleTypeMenuItem,
					Title:        "用户管理",
					Name:         auth.ApiPermissionUsers.Resource(),
					Path:         "system/users",
					Icon:         "el-icon-UserFilled",
					MenuItemType: models.MenuItemTypeTab,
					Component:    "/src/views/system/user/index.vue",
					Weight:       98,
					Children: []*CreateInput{
						{Type: models.RuleTypePermission, Title: "查看", Name: auth.ApiPermissionUsers.Read().Name},
						{Type: models.RuleTypePermission, Title: "添加", Name: auth.ApiPermissionUsers.Create().Name},
						{Type: models.RuleTypePermission, Title: "编辑", Name: auth.ApiPermissionUsers.Update().Name},
						{Type: models.RuleTypePermission, Title: "删除", Name: auth.ApiPermissionUsers.Delete().Name},
					},
				},
				{
					Type:         models.RuleTypeMenuItem,
					Title:        "操作日志",
					Name:         auth.ApiPermissionOperationLogs.Resource(),
					Path:         "system/operation-logs",
					Icon:         "el-icon-List",
					MenuItemType: models.MenuItemTypeTab,
					Component:    "/src/views/system/operationLog/index.vue",
					Weight:       97,
					Children: []*CreateInput{
						{Type: models.RuleTypePermission, Title: "查看", Name: auth.ApiPermissionOperationLogs.Read().Name},
						{Type: models.RuleTypePermission, Title: "删除", Name: auth.ApiPermissionOperationLogs.Delete().Name},
					},
				},
			},
		},
	}
}

// Seed 初始化默认规则树。主页规则已存在时整体跳过，
// 不做部分补种，多次调用后规则数不变。
func Seed(db *gorm.DB) error {
	var sentinel models.Rule
	err := db.Where("path = ?", HomePath).First(&sentinel).Error
	if err == nil {
		logger.Debug("规则树已初始化，跳过")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("检查规则树初始化状态失败: %w", err)
	}

	store := NewStore(db)
	for _, in := range DefaultTree() {
		if _, err := store.Create(in); err != nil {
			return fmt.Errorf("初始化规则树失败: %w", err)
		}
	}
	logger.Info("规则树初始化成功")
	return nil
}
