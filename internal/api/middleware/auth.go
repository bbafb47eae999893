package middleware

import (
	"errors"
	"strings"

	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/Xingwd/xadmin/internal/db"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthMiddleware 认证中间件
func AuthMiddleware(jwtConfig *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从请求头获取 JWT 令牌
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ResponseError(c, utils.CodeUnauthorized, errors.New("未提供认证令牌"))
			c.Abort()
			return
		}

		// 检查 Authorization 头格式
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			utils.ResponseError(c, utils.CodeUnauthorized, errors.New("认证令牌格式错误"))
			c.Abort()
			return
		}

		// 解析令牌
		claims, err := auth.ParseToken(parts[1], jwtConfig)
		if err != nil {
			logger.Warn("解析令牌失败", zap.Error(err))
			utils.ResponseError(c, utils.CodeUnauthorized, err)
			c.Abort()
			return
		}

		// 将用户信息存储到上下文中
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("tokenScopes", claims.Scopes)

		c.Next()
	}
}

// RequireScopes 授权中间件：路由声明所需作用域，超级用户无条件放行，
// 普通用户的令牌作用域必须覆盖全部所需作用域，否则返回权限不足。
// 权限不足（403）与未认证（401）是两类不同的失败。
func RequireScopes(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 供操作日志中间件取用
		c.Set("requiredScopes", scopes)

		userID := utils.GetUserID(c)
		var user models.User
		if err := db.GetDB().First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.ResponseError(c, utils.CodeNotFound, errors.New("用户不存在"))
			} else {
				logger.Error("查询用户失败", zap.Uint("userID", userID), zap.Error(err))
				utils.ResponseError(c, utils.CodeInternalError, errors.New("查询用户失败"))
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.ResponseError(c, utils.CodeInvalidParams, errors.New("用户已禁用"))
			c.Abort()
			return
		}

		c.Set("user", &user)

		// 超级用户跳过作用域检查
		if user.IsSuperuser {
			c.Next()
			return
		}

		tokenScopes := map[string]struct{}{}
		if v, exists := c.Get("tokenScopes"); exists {
			for _, s := range v.([]string) {
				tokenScopes[s] = struct{}{}
			}
		}

		for _, scope := range scopes {
			if _, ok := tokenScopes[scope]; !ok {
				logger.Warn("用户权限不足",
					zap.Uint("userID", user.ID),
					zap.String("username", user.Username),
					zap.String("scope", scope))
				utils.ResponseError(c, utils.CodeForbidden, errors.New("权限不足"))
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// CurrentUser 从上下文中获取已加载的当前用户
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
