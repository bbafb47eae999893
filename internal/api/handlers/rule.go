package handlers

import (
	"errors"
	"strconv"

	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/rule"
	"github.com/Xingwd/xadmin/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RuleHandler 规则管理处理器
type RuleHandler struct {
	BaseHandler
	store   *rule.Store
	catalog *auth.ScopeCatalog
}

// NewRuleHandler 创建规则管理处理器
func NewRuleHandler(db *gorm.DB, catalog *auth.ScopeCatalog) *RuleHandler {
	return &RuleHandler{
		store:   rule.NewStore(db),
		catalog: catalog,
	}
}

// List 获取规则树。quick_search非空时返回平铺的命中列表
func (h *RuleHandler) List(c *gin.Context) {
	onlyMenus := c.Query("only_menus") == "true"
	quickSearch := c.Query("quick_search")

	trees, err := h.store.Trees(onlyMenus, quickSearch)
	if err != nil {
		logger.Error("获取规则树失败", zap.Error(err))
		h.InternalError(c, "获取规则树失败")
		return
	}

	h.Success(c, gin.H{"data": trees})
}

// Permissions 获取可分配的权限目录，unassigned时排除已绑定规则的权限
func (h *RuleHandler) Permissions(c *gin.Context) {
	unassigned := c.Query("unassigned") == "true"

	assigned := make(map[string]struct{})
	if unassigned {
		permissionRules, err := h.store.ByType(models.RuleTypePermission)
		if err != nil {
			logger.Error("获取权限规则失败", zap.Error(err))
			h.InternalError(c, "获取权限规则失败")
			return
		}
		for _, r := range permissionRules {
			assigned[r.Name] = struct{}{}
		}
	}

	permissions := make([]auth.Permission, 0)
	for _, p := range h.catalog.Permissions() {
		if _, ok := assigned[p.Name]; ok {
			continue
		}
		permissions = append(permissions, p)
	}

	h.Success(c, permissions)
}

// Get 获取规则详情
func (h *RuleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "无效的规则ID")
		return
	}

	r, err := h.store.Get(uint(id))
	if err != nil {
		if errors.Is(err, rule.ErrRuleNotFound) {
			h.NotFound(c, "规则不存在")
			return
		}
		logger.Error("获取规则失败", zap.Uint64("id", id), zap.Error(err))
		h.InternalError(c, "获取规则失败")
		return
	}

	h.Success(c, r)
}

// Create 创建规则
func (h *RuleHandler) Create(c *gin.Context) {
	var in rule.CreateInput
	if err := utils.BindAndValidate(c, &in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// 预检规则名冲突，与普通参数错误区分开
	if _, err := h.store.GetByName(in.Name); err == nil {
		h.Conflict(c, "规则名称已存在")
		return
	} else if !errors.Is(err, rule.ErrRuleNotFound) {
		logger.Error("检查规则名失败", zap.String("name", in.Name), zap.Error(err))
		h.InternalError(c, "检查规则名失败")
		return
	}

	created, err := h.store.Create(&in)
	if err != nil {
		if errors.Is(err, rule.ErrPermissionChildren) {
			h.BadRequest(c, err.Error())
			return
		}
		logger.Error("创建规则失败", zap.String("name", in.Name), zap.Error(err))
		h.InternalError(c, "创建规则失败")
		return
	}

	h.Success(c, created)
}

// Update 更新规则，仅更新请求中出现的字段
func (h *RuleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "无效的规则ID")
		return
	}

	var in rule.UpdateInput
	if err := utils.BindAndValidate(c, &in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	updated, err := h.store.Update(uint(id), &in)
	if err != nil {
		switch {
		case errors.Is(err, rule.ErrRuleNotFound):
			h.NotFound(c, "规则不存在")
		case errors.Is(err, rule.ErrRuleNameExists):
			h.Conflict(c, "规则名称已存在")
		default:
			logger.Error("更新规则失败", zap.Uint64("id", id), zap.Error(err))
			h.InternalError(c, "更新规则失败")
		}
		return
	}

	h.Success(c, updated)
}

// Delete 删除规则，子规则提升为根节点
func (h *RuleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "无效的规则ID")
		return
	}

	if err := h.store.Delete(uint(id)); err != nil {
		if errors.Is(err, rule.ErrRuleNotFound) {
			h.NotFound(c, "规则不存在")
			return
		}
		logger.Error("删除规则失败", zap.Uint64("id", id), zap.Error(err))
		h.InternalError(c, "删除规则失败")
		return
	}

	h.Success(c, nil)
}
