package handlers

import (
	"sort"
	"time"

	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/rule"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthHandler 登录认证处理器
type AuthHandler struct {
	BaseHandler
	DB        *gorm.DB
	jwtConfig *config.JWTConfig
}

// NewAuthHandler 创建登录认证处理器
func NewAuthHandler(db *gorm.DB, jwtConfig *config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		DB:        db,
		jwtConfig: jwtConfig,
	}
}

// Login 登录获取访问令牌，令牌作用域为签发时用户全部角色授予的规则名
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}

	if err := c.ShouldBind(&req); err != nil {
		h.BadRequest(c, "参数错误")
		return
	}

	var user models.User
	if err := h.DB.Preload("Roles.Permissions").
		Where("username = ?", req.Username).First(&user).Error; err != nil {
		h.BadRequest(c, "用户名或密码错误")
		return
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		h.BadRequest(c, "用户名或密码错误")
		return
	}

	if !user.IsActive {
		h.BadRequest(c, "用户已禁用")
		return
	}

	// 汇总作用域，排序仅为输出稳定
	permissions := rule.PermissionsOf(&user)
	scopes := make([]string, 0, len(permissions))
	for name := range permissions {
		scopes = append(scopes, name)
	}
	sort.Strings(scopes)

	token, err := auth.GenerateToken(&user, scopes, h.jwtConfig)
	if err != nil {
		logger.Error("生成令牌失败", zap.String("username", user.Username), zap.Error(err))
		h.InternalError(c, "生成令牌失败")
		return
	}

	// 更新最近登录时间
	now := time.Now()
	if err := h.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		logger.Warn("更新最近登录时间失败", zap.Uint("userID", user.ID), zap.Error(err))
	}

	// 供操作日志中间件取用
	c.Set("userID", user.ID)
	c.Set("username", user.Username)

	h.Success(c, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// TestToken 校验访问令牌，返回当前用户
func (h *AuthHandler) TestToken(c *gin.Context) {
	var user models.User
	if err := h.DB.Preload("Roles").First(&user, c.GetUint("userID")).Error; err != nil {
		h.NotFound(c, "用户不存在")
		return
	}
	h.Success(c, &user)
}
