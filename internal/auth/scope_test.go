package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResource(t *testing.T) {
	// 资源路径规范化
	assert.Equal(t, "users", Resource("users"))
	assert.Equal(t, "users", Resource("/users/"))
	assert.Equal(t, "users:me", Resource("users/me"))
	assert.Equal(t, "users:me", Resource("/users/me/"))
	assert.Equal(t, "operation-logs", Resource("operation-logs"))

	// 对已规范化的结果重复调用不改变结果
	assert.Equal(t, Resource("users/me"), Resource(Resource("users/me")))
	assert.Equal(t, Resource("a/b/c"), Resource(Resource("a/b/c")))
}

func TestPermissionName(t *testing.T) {
	assert.Equal(t, "users:read", PermissionName("users", OperationRead))
	assert.Equal(t, "users:me:update", PermissionName("users/me", OperationUpdate))
	assert.Equal(t, "rules:delete", PermissionName("/rules/", OperationDelete))
}

func TestApiPermission(t *testing.T) {
	p := ApiPermission{Path: "users/me", Description: "Users Me"}

	assert.Equal(t, "users:me", p.Resource())
	assert.Equal(t, "users:me:create", p.Create().Name)
	assert.Equal(t, "users:me:read", p.Read().Name)
	assert.Equal(t, "users:me:update", p.Update().Name)
	assert.Equal(t, "users:me:delete", p.Delete().Name)
	assert.Equal(t, "Read on Users Me", p.Read().Description)
}

func TestScopeCatalog(t *testing.T) {
	catalog := NewScopeCatalog(
		ApiPermission{Path: "rules", Description: "Rules"},
		ApiPermission{Path: "users/me", Description: "Users Me"},
	)

	// 资源数 × 操作数
	assert.Len(t, catalog.Permissions(), 8)

	assert.True(t, catalog.Has("rules:read"))
	assert.True(t, catalog.Has("users:me:delete"))
	assert.False(t, catalog.Has("rules"))
	assert.False(t, catalog.Has("users:read"))

	// 声明序：同一资源的操作按 create/read/update/delete 排列
	names := make([]string, 0, 8)
	for _, p := range catalog.Permissions() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"rules:create", "rules:read", "rules:update", "rules:delete",
		"users:me:create", "users:me:read", "users:me:update", "users:me:delete",
	}, names)
}

func TestDefaultScopeCatalog(t *testing.T) {
	catalog := DefaultScopeCatalog()

	// 6个资源 × 4种操作
	assert.Len(t, catalog.Permissions(), 24)
	assert.True(t, catalog.Has("rules:create"))
	assert.True(t, catalog.Has("roles:update"))
	assert.True(t, catalog.Has("users:home:read"))
	assert.True(t, catalog.Has("operation-logs:delete"))
}
