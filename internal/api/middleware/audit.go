package middleware

import (
	"github.com/Xingwd/xadmin/internal/db"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/rule"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OperationLogMiddleware 操作日志中间件。
// 每个未被排除的请求在处理完成后追加一条操作日志，name取路由声明的
// 首个作用域（日志提交接口取rule_name查询参数），title由规则树解析为完整标题。
func OperationLogMiddleware(excludePaths []string) gin.HandlerFunc {
	excluded := make(map[string]struct{}, len(excludePaths))
	for _, path := range excludePaths {
		excluded[path] = struct{}{}
	}

	return func(c *gin.Context) {
		// 处理请求
		c.Next()

		method, path := c.Request.Method, c.Request.URL.Path
		if method == "OPTIONS" {
			return
		}
		if _, ok := excluded[path]; ok {
			return
		}

		// 获取用户信息，未认证请求（如登录失败）用户字段留空
		var userID *uint
		var username string
		if id := c.GetUint("userID"); id != 0 {
			userID = &id
			username = c.GetString("username")
		}

		// 解析操作名和标题
		var name string
		if ruleName := c.Query("rule_name"); ruleName != "" && isSubmitPath(path) {
			name = ruleName
		} else if v, exists := c.Get("requiredScopes"); exists {
			if scopes, ok := v.([]string); ok && len(scopes) > 0 {
				name = scopes[0]
			}
		}
		var title string
		if name != "" {
			title = rule.NewStore(db.GetDB()).FullTitle(name)
		}

		log := &models.OperationLog{
			UserID:             userID,
			Username:           username,
			Name:               name,
			Title:              title,
			RequestMethod:      method,
			RequestPath:        path,
			RequestQueryParams: c.Request.URL.RawQuery,
			ResponseStatusCode: c.Writer.Status(),
		}
		if err := db.GetDB().Create(log).Error; err != nil {
			logger.Error("保存操作日志失败",
				zap.String("path", path),
				zap.String("method", method),
				zap.Error(err))
		}
	}
}

// isSubmitPath 是否为前端主动提交操作日志的接口
func isSubmitPath(path string) bool {
	return path == "/api/v1/operation-logs/submit"
}
