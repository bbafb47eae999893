package rule

import (
	"sort"
	"strings"

	"github.com/Xingwd/xadmin/internal/db/models"
)

// 树的构建和遍历都在已取回的内存切片上进行，节点按 id 查找，不持有数据库游标。

// copyNode 复制节点并剥离关联引用
func copyNode(r models.Rule) *models.Rule {
	n := r
	n.Parent = nil
	n.Children = nil
	n.Roles = nil
	return &n
}

// sortByWeight 按权重降序排序，权重相同保持原有顺序
func sortByWeight(nodes []*models.Rule) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Weight > nodes[j].Weight
	})
}

// BuildForest 由平铺规则集重建父子关系。
// 父节点不在集合中的节点提升为根节点；每一层子节点按权重降序排列。
func BuildForest(rules []models.Rule) []*models.Rule {
	arena := make(map[uint]*models.Rule, len(rules))
	nodes := make([]*models.Rule, 0, len(rules))
	for i := range rules {
		n := copyNode(rules[i])
		arena[n.ID] = n
		nodes = append(nodes, n)
	}

	var roots []*models.Rule
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := arena[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	for _, n := range nodes {
		sortByWeight(n.Children)
	}
	sortByWeight(roots)
	return roots
}

// FlattenMenus 把规则森林压平为菜单列表，仅保留菜单类节点。
// 非根节点的标题带缩进前缀：每层4个空格，同层最后一个节点用└，其余用├。
func FlattenMenus(roots []*models.Rule) []*models.Rule {
	return flattenMenus(roots, 0, nil)
}

func flattenMenus(nodes []*models.Rule, level int, out []*models.Rule) []*models.Rule {
	for i, node := range nodes {
		if !node.IsMenu() {
			continue
		}
		entry := copyNode(*node)
		if level > 0 {
			branch := "├"
			if i == len(nodes)-1 {
				branch = "└"
			}
			entry.Title = strings.Repeat(" ", level*4) + branch + node.Title
		}
		out = append(out, entry)
		if len(node.Children) > 0 {
			out = flattenMenus(node.Children, level+1, out)
		}
	}
	return out
}

// FullTitle 由规则名生成完整标题：自该规则向上回溯到根，
// 按根到叶的顺序用“-”连接各级标题。规则不存在时返回空串。
func FullTitle(rules []models.Rule, name string) string {
	byID := make(map[uint]*models.Rule, len(rules))
	var cur *models.Rule
	for i := range rules {
		byID[rules[i].ID] = &rules[i]
		if rules[i].Name == name {
			cur = &rules[i]
		}
	}

	var titles []string
	for cur != nil {
		titles = append(titles, cur.Title)
		if cur.ParentID == nil {
			break
		}
		cur = byID[*cur.ParentID]
	}

	// 反转为根到叶顺序
	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return strings.Join(titles, "-")
}

// PermissionsOf 汇总用户全部角色授予的规则名集合。
// 需要已预加载 Roles.Permissions；重复项自动合并。
func PermissionsOf(user *models.User) map[string]struct{} {
	permissions := make(map[string]struct{})
	for _, role := range user.Roles {
		for _, rule := range role.Permissions {
			permissions[rule.Name] = struct{}{}
		}
	}
	return permissions
}
