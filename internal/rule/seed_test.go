package rule

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB 创建基于sqlmock的GORM连接
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a gorm database", err)
	}
	return gdb, mock
}

func TestSeedSkipsWhenInitialized(t *testing.T) {
	gdb, mock := newMockDB(t)

	// 主页规则已存在，整体跳过，不再有任何写入
	rows := sqlmock.NewRows([]string{"id", "type", "title", "name", "path"}).
		AddRow(1, string(models.RuleTypeMenuItem), "主页", "users:home", HomePath)
	mock.ExpectQuery(`SELECT \* FROM "rules" WHERE path = \$1`).
		WithArgs(HomePath, 1).
		WillReturnRows(rows)

	err := Seed(gdb)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultTreeShape(t *testing.T) {
	tree := DefaultTree()

	// 三棵根：主页、常规管理、系统管理
	assert.Len(t, tree, 3)
	assert.Equal(t, "主页", tree[0].Title)
	assert.Equal(t, HomePath, tree[0].Path)
	assert.Equal(t, "常规管理", tree[1].Title)
	assert.Equal(t, "系统管理", tree[2].Title)

	// 主页权重最高，排在树的最前面
	assert.Equal(t, 999, tree[0].Weight)
	assert.Greater(t, tree[1].Weight, tree[2].Weight)

	var names []string
	var permissions []string
	var walk func(nodes []*CreateInput)
	walk = func(nodes []*CreateInput) {
		for _, n := range nodes {
			names = append(names, n.Name)
			if n.Type == models.RuleTypePermission {
				permissions = append(permissions, n.Name)
				// 权限类节点必须是叶子节点
				assert.Empty(t, n.Children)
			}
			walk(n.Children)
		}
	}
	walk(tree)

	// 规则名全局唯一
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		_, dup := seen[name]
		assert.False(t, dup, "duplicate rule name: %s", name)
		seen[name] = struct{}{}
	}

	// 权限名覆盖全部接口资源的操作
	assert.Contains(t, permissions, "users:home:read")
	assert.Contains(t, permissions, "users:me:read")
	assert.Contains(t, permissions, "users:me:update")
	assert.Contains(t, permissions, "users:me:delete")
	assert.Contains(t, permissions, "rules:create")
	assert.Contains(t, permissions, "roles:update")
	assert.Contains(t, permissions, "users:delete")
	assert.Contains(t, permissions, "operation-logs:read")
	assert.Contains(t, permissions, "operation-logs:delete")
	assert.Len(t, permissions, 18)
}

// flattenInputs 模拟入库：深度优先分配id并回填parent_id
func flattenInputs(nodes []*CreateInput, parentID *uint, nextID *uint, out []models.Rule) []models.Rule {
	for _, n := range nodes {
		id := *nextID
		*nextID++
		r := models.Rule{
			ParentID: parentID,
			Type:     n.Type,
			Title:    n.Title,
			Name:     n.Name,
			Path:     n.Path,
			Weight:   n.Weight,
			Status:   true,
		}
		r.ID = id
		out = append(out, r)
		pid := id
		out = flattenInputs(n.Children, &pid, nextID, out)
	}
	return out
}

// assertSameShape 递归比较重建的树和声明的树：标题和排列顺序一致
func assertSameShape(t *testing.T, want []*CreateInput, got []*models.Rule) {
	assert.Len(t, got, len(want))
	for i := range want {
		if i >= len(got) {
			return
		}
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Name, got[i].Name)
		assertSameShape(t, want[i].Children, got[i].Children)
	}
}

func TestDefaultTreeRoundTrip(t *testing.T) {
	tree := DefaultTree()

	// 平铺入库再重建，得到与声明一致的形状。
	// 声明中的子节点已按权重降序排列，重建后顺序应保持不变。
	nextID := uint(1)
	rules := flattenInputs(tree, nil, &nextID, nil)
	roots := BuildForest(rules)

	assertSameShape(t, tree, roots)

	// 完整标题沿根到叶用“-”连接
	assert.Equal(t, "系统管理-规则管理-查看", FullTitle(rules, "rules:read"))
	assert.Equal(t, "常规管理-个人信息-编辑", FullTitle(rules, "users:me:update"))
	assert.Equal(t, "主页-查看", FullTitle(rules, "users:home:read"))
}
