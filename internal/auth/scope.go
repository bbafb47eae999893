package auth

import "strings"

// Operation 接口操作类型
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Operations 全部操作类型，顺序固定
var Operations = []Operation{OperationCreate, OperationRead, OperationUpdate, OperationDelete}

var operationVerbs = map[Operation]string{
	OperationCreate: "Create",
	OperationRead:   "Read",
	OperationUpdate: "Update",
	OperationDelete: "Delete",
}

// Permission 权限，name 即访问令牌中携带的作用域
type Permission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ApiPermission 一组接口资源权限的声明
type ApiPermission struct {
	Path        string
	Description string
}

// Resource 规范化资源路径：去掉首尾各一个斜杠后，把斜杠替换为冒号。
// 对已规范化的路径重复调用结果不变。
func Resource(path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	return strings.ReplaceAll(path, "/", ":")
}

// PermissionName 由资源路径和操作类型生成权限名
func PermissionName(path string, op Operation) string {
	return Resource(path) + ":" + string(op)
}

// Resource 规范化后的资源路径
func (p ApiPermission) Resource() string {
	return Resource(p.Path)
}

// Permission 生成指定操作的权限
func (p ApiPermission) Permission(op Operation) Permission {
	return Permission{
		Name:        PermissionName(p.Path, op),
		Description: operationVerbs[op] + " on " + p.Description,
	}
}

// Create 创建权限
func (p ApiPermission) Create() Permission { return p.Permission(OperationCreate) }

// Read 查看权限
func (p ApiPermission) Read() Permission { return p.Permission(OperationRead) }

// Update 编辑权限
func (p ApiPermission) Update() Permission { return p.Permission(OperationUpdate) }

// Delete 删除权限
func (p ApiPermission) Delete() Permission { return p.Permission(OperationDelete) }

// ScopeCatalog 可分配的作用域全集，资源路径 × 四种操作的笛卡尔积。
// 在进程初始化时显式构建一次，按引用传递给使用方。
type ScopeCatalog struct {
	permissions []Permission
	index       map[string]string // name -> description
}

// NewScopeCatalog 由接口资源声明构建作用域目录
func NewScopeCatalog(apiPermissions ...ApiPermission) *ScopeCatalog {
	c := &ScopeCatalog{
		index: make(map[string]string),
	}
	for _, p := range apiPermissions {
		for _, op := range Operations {
			perm := p.Permission(op)
			c.permissions = append(c.permissions, perm)
			c.index[perm.Name] = perm.Description
		}
	}
	return c
}

// Permissions 目录中的全部权限，声明序
func (c *ScopeCatalog) Permissions() []Permission {
	return c.permissions
}

// Has 目录中是否存在指定作用域
func (c *ScopeCatalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// 接口资源声明
var (
	ApiPermissionRules         = ApiPermission{Path: "rules", Description: "Rules"}
	ApiPermissionRoles         = ApiPermission{Path: "roles", Description: "Roles"}
	ApiPermissionUsers         = ApiPermission{Path: "users", Description: "Users"}
	ApiPermissionUsersMe       = ApiPermission{Path: "users/me", Description: "Users Me"}
	ApiPermissionUsersHome     = ApiPermission{Path: "users/home", Description: "Users Home"}
	ApiPermissionOperationLogs = ApiPermission{Path: "operation-logs", Description: "Operation Logs"}
)

// DefaultScopeCatalog 构建系统声明的全部接口资源的作用域目录
func DefaultScopeCatalog() *ScopeCatalog {
	return NewScopeCatalog(
		ApiPermissionRules,
		ApiPermissionRoles,
		ApiPermissionUsers,
		ApiPermissionUsersMe,
		ApiPermissionUsersHome,
		ApiPermissionOperationLogs,
	)
}
