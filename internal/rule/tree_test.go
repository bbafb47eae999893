package rule

import (
	"testing"

	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

// newRule 构造测试规则
func newRule(id uint, parentID *uint, ruleType models.RuleType, title, name string, weight int) models.Rule {
	r := models.Rule{
		ParentID: parentID,
		Type:     ruleType,
		Title:    title,
		Name:     name,
		Weight:   weight,
		Status:   true,
	}
	r.ID = id
	return r
}

// systemRules 模拟系统管理子树的平铺规则集
func systemRules() []models.Rule {
	return []models.Rule{
		newRule(1, nil, models.RuleTypeMenuDir, "系统管理", "system", 1),
		newRule(2, uintPtr(1), models.RuleTypeMenuItem, "规则管理", "rules", 100),
		newRule(3, uintPtr(1), models.RuleTypeMenuItem, "角色管理", "roles", 99),
		newRule(4, uintPtr(1), models.RuleTypeMenuItem, "用户管理", "users", 98),
		newRule(5, uintPtr(1), models.RuleTypeMenuItem, "操作日志", "operation-logs", 97),
		newRule(6, uintPtr(2), models.RuleTypePermission, "查看", "rules:read", 0),
		newRule(7, uintPtr(2), models.RuleTypePermission, "添加", "rules:create", 0),
	}
}

func TestBuildForestOrdering(t *testing.T) {
	rules := []models.Rule{
		newRule(1, nil, models.RuleTypeMenuDir, "系统管理", "system", 1),
		newRule(2, nil, models.RuleTypeMenuDir, "常规管理", "routine", 2),
		newRule(3, nil, models.RuleTypeMenuItem, "主页", "users:home", 999),
		newRule(4, uintPtr(1), models.RuleTypeMenuItem, "操作日志", "operation-logs", 97),
		newRule(5, uintPtr(1), models.RuleTypeMenuItem, "规则管理", "rules", 100),
		newRule(6, uintPtr(1), models.RuleTypeMenuItem, "角色管理", "roles", 99),
	}

	roots := BuildForest(rules)

	// 根节点按权重降序
	assert.Len(t, roots, 3)
	assert.Equal(t, "主页", roots[0].Title)
	assert.Equal(t, "常规管理", roots[1].Title)
	assert.Equal(t, "系统管理", roots[2].Title)

	// 每层子节点同样按权重降序
	children := roots[2].Children
	assert.Len(t, children, 3)
	assert.Equal(t, "规则管理", children[0].Title)
	assert.Equal(t, "角色管理", children[1].Title)
	assert.Equal(t, "操作日志", children[2].Title)
}

func TestBuildForestOrphanPromotion(t *testing.T) {
	// 父节点不在集合中的节点提升为根节点
	rules := []models.Rule{
		newRule(2, uintPtr(1), models.RuleTypeMenuItem, "规则管理", "rules", 100),
		newRule(6, uintPtr(2), models.RuleTypePermission, "查看", "rules:read", 0),
		newRule(9, uintPtr(99), models.RuleTypeMenuItem, "个人信息", "users:me", 1),
	}

	roots := BuildForest(rules)

	assert.Len(t, roots, 2)
	assert.Equal(t, "规则管理", roots[0].Title)
	assert.Equal(t, "个人信息", roots[1].Title)
	assert.Len(t, roots[0].Children, 1)
	assert.Equal(t, "查看", roots[0].Children[0].Title)
}

func TestBuildForestDoesNotMutateInput(t *testing.T) {
	rules := systemRules()
	BuildForest(rules)

	for _, r := range rules {
		assert.Nil(t, r.Children)
		assert.Nil(t, r.Parent)
	}
}

func TestFlattenMenus(t *testing.T) {
	roots := BuildForest(systemRules())
	menus := FlattenMenus(roots)

	titles := make([]string, 0, len(menus))
	for _, m := range menus {
		titles = append(titles, m.Title)
	}

	// 权限类节点被过滤；非根节点带缩进前缀，同层最后一个用└
	assert.Equal(t, []string{
		"系统管理",
		"    ├规则管理",
		"    ├角色管理",
		"    ├用户管理",
		"    └操作日志",
	}, titles)

	// 压平后的节点不携带子节点
	for _, m := range menus {
		assert.Nil(t, m.Children)
	}
}

func TestFlattenMenusBranchWithTrailingPermission(t *testing.T) {
	// 同层最后一个节点是权限类时，末尾的菜单节点仍用├
	rules := []models.Rule{
		newRule(1, nil, models.RuleTypeMenuItem, "主页", "users:home", 999),
		newRule(2, uintPtr(1), models.RuleTypeMenuItem, "子菜单", "users:home:sub", 10),
		newRule(3, uintPtr(1), models.RuleTypePermission, "查看", "users:home:read", 0),
	}

	menus := FlattenMenus(BuildForest(rules))

	assert.Len(t, menus, 2)
	assert.Equal(t, "主页", menus[0].Title)
	assert.Equal(t, "    ├子菜单", menus[1].Title)
}

func TestFlattenMenusNestedLevels(t *testing.T) {
	rules := []models.Rule{
		newRule(1, nil, models.RuleTypeMenuDir, "系统管理", "system", 1),
		newRule(2, uintPtr(1), models.RuleTypeMenuItem, "规则管理", "rules", 100),
		newRule(3, uintPtr(2), models.RuleTypeMenuItem, "高级设置", "rules:advanced", 1),
	}

	menus := FlattenMenus(BuildForest(rules))

	assert.Len(t, menus, 3)
	assert.Equal(t, "系统管理", menus[0].Title)
	assert.Equal(t, "    └规则管理", menus[1].Title)
	assert.Equal(t, "        └高级设置", menus[2].Title)
}

func TestFullTitle(t *testing.T) {
	rules := systemRules()

	assert.Equal(t, "系统管理-规则管理-查看", FullTitle(rules, "rules:read"))
	assert.Equal(t, "系统管理-规则管理", FullTitle(rules, "rules"))
	assert.Equal(t, "系统管理", FullTitle(rules, "system"))

	// 规则不存在时返回空串
	assert.Equal(t, "", FullTitle(rules, "not-exists"))
	assert.Equal(t, "", FullTitle(nil, "rules:read"))
}

func TestPermissionsOf(t *testing.T) {
	read := newRule(6, uintPtr(2), models.RuleTypePermission, "查看", "rules:read", 0)
	create := newRule(7, uintPtr(2), models.RuleTypePermission, "添加", "rules:create", 0)
	menu := newRule(2, uintPtr(1), models.RuleTypeMenuItem, "规则管理", "rules", 100)

	user := &models.User{
		Roles: []*models.Role{
			{Permissions: []*models.Rule{&read, &menu}},
			{Permissions: []*models.Rule{&read, &create}},
		},
	}

	permissions := PermissionsOf(user)

	// 多角色授予的规则名取并集，菜单类规则名同样计入
	assert.Len(t, permissions, 3)
	assert.Contains(t, permissions, "rules:read")
	assert.Contains(t, permissions, "rules:create")
	assert.Contains(t, permissions, "rules")
}

func TestPermissionsOfNoRoles(t *testing.T) {
	permissions := PermissionsOf(&models.User{})
	assert.Empty(t, permissions)
}
