package handlers

import (
	"time"

	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleHandler 角色管理处理器
type RoleHandler struct {
	BaseHandler
	DB *gorm.DB
}

// NewRoleHandler 创建角色管理处理器
func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{DB: db}
}

// List 获取角色列表，支持按名称快速搜索
func (h *RoleHandler) List(c *gin.Context) {
	pagination := utils.BindPagination(c)
	order, err := utils.BindOrder(c, []string{"id", "name", "created_at", "updated_at"}, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := h.DB.Model(&models.Role{})
	query = utils.ApplyQuickSearch(query, c.Query("quick_search"), []string{"name"})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("获取角色总数失败", zap.Error(err))
		h.InternalError(c, "获取角色总数失败")
		return
	}

	var roles []models.Role
	if err := query.Preload("Permissions").Preload("Users").
		Order(order.Clause()).
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&roles).Error; err != nil {
		logger.Error("获取角色列表失败", zap.Error(err))
		h.InternalError(c, "获取角色列表失败")
		return
	}

	h.Success(c, gin.H{"data": roles, "total": total})
}

// Get 获取角色详情
func (h *RoleHandler) Get(c *gin.Context) {
	var role models.Role
	if err := h.DB.Preload("Permissions").Preload("Users").
		First(&role, c.Param("id")).Error; err != nil {
		h.NotFound(c, "角色不存在")
		return
	}
	h.Success(c, &role)
}

// Create 创建角色，可同时关联权限规则和用户
func (h *RoleHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=50"`
		Permissions []uint `json:"permissions"`
		Users       []uint `json:"users"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	var count int64
	if err := h.DB.Model(&models.Role{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		h.InternalError(c, "检查角色名失败")
		return
	}
	if count > 0 {
		h.Conflict(c, "角色名已存在")
		return
	}

	role := models.Role{Name: req.Name}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		return replaceRoleAssociations(tx, &role, req.Permissions, req.Users)
	})
	if err != nil {
		logger.Error("创建角色失败", zap.String("name", req.Name), zap.Error(err))
		h.InternalError(c, "创建角色失败")
		return
	}

	h.Message(c, "角色创建成功")
}

// Update 更新角色。权限和用户关联整体替换，
// 关联集合未变化时不触碰更新时间。
func (h *RoleHandler) Update(c *gin.Context) {
	var role models.Role
	if err := h.DB.Preload("Permissions").Preload("Users").
		First(&role, c.Param("id")).Error; err != nil {
		h.NotFound(c, "角色不存在")
		return
	}

	var req struct {
		Name        *string `json:"name" binding:"omitempty,min=1,max=50"`
		Permissions []uint  `json:"permissions"`
		Users       []uint  `json:"users"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	if req.Name != nil && *req.Name != role.Name {
		var count int64
		if err := h.DB.Model(&models.Role{}).
			Where("name = ? AND id <> ?", *req.Name, role.ID).Count(&count).Error; err != nil {
			h.InternalError(c, "检查角色名失败")
			return
		}
		if count > 0 {
			h.Conflict(c, "角色名已存在")
			return
		}
	}

	permissionsChanged := !sameIDSet(ruleIDs(role.Permissions), req.Permissions)
	usersChanged := !sameIDSet(userIDs(role.Users), req.Users)

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Name != nil && *req.Name != role.Name {
			if err := tx.Model(&role).Update("name", *req.Name).Error; err != nil {
				return err
			}
		}
		if permissionsChanged || usersChanged {
			if err := replaceRoleAssociations(tx, &role, req.Permissions, req.Users); err != nil {
				return err
			}
			return tx.Model(&role).Update("updated_at", time.Now()).Error
		}
		return nil
	})
	if err != nil {
		logger.Error("更新角色失败", zap.Uint("id", role.ID), zap.Error(err))
		h.InternalError(c, "更新角色失败")
		return
	}

	h.Message(c, "角色更新成功")
}

// Delete 删除角色，先解除权限和用户关联
func (h *RoleHandler) Delete(c *gin.Context) {
	var role models.Role
	if err := h.DB.First(&role, c.Param("id")).Error; err != nil {
		h.NotFound(c, "角色不存在")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&role).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		logger.Error("删除角色失败", zap.Uint("id", role.ID), zap.Error(err))
		h.InternalError(c, "删除角色失败")
		return
	}

	h.Message(c, "角色删除成功")
}

func ruleIDs(rules []*models.Rule) []uint {
	ids := make([]uint, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return ids
}

func userIDs(users []*models.User) []uint {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// sameIDSet 按集合语义比较两组id，忽略顺序和重复
func sameIDSet(current, requested []uint) bool {
	set := make(map[uint]struct{}, len(current))
	for _, id := range current {
		set[id] = struct{}{}
	}
	other := make(map[uint]struct{}, len(requested))
	for _, id := range requested {
		other[id] = struct{}{}
	}
	if len(set) != len(other) {
		return false
	}
	for id := range other {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// replaceRoleAssociations 整体替换角色的权限规则和用户关联
func replaceRoleAssociations(tx *gorm.DB, role *models.Role, ruleIDs, userIDs []uint) error {
	rules := []*models.Rule{}
	if len(ruleIDs) > 0 {
		if err := tx.Find(&rules, ruleIDs).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(role).Association("Permissions").Replace(rules); err != nil {
		return err
	}

	users := []*models.User{}
	if len(userIDs) > 0 {
		if err := tx.Find(&users, userIDs).Error; err != nil {
			return err
		}
	}
	return tx.Model(role).Association("Users").Replace(users)
}
