package router

import (
	"github.com/Xingwd/xadmin/internal/api/handlers"
	"github.com/Xingwd/xadmin/internal/api/middleware"
	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// 创建Gin实例
	router := gin.New()

	// 全局中间件
	router.Use(
		gin.Recovery(),                  // 内置恢复中间件
		middleware.RecoveryMiddleware(), // 自定义恢复中间件
		middleware.LoggerMiddleware(),   // 日志中间件
		middleware.CorsMiddleware(),     // 跨域中间件
	)

	// 创建处理器
	catalog := auth.DefaultScopeCatalog()
	authHandler := handlers.NewAuthHandler(db, &cfg.JWT)
	userHandler := handlers.NewUserHandler(db, &cfg.App)
	ruleHandler := handlers.NewRuleHandler(db, catalog)
	roleHandler := handlers.NewRoleHandler(db)
	operationLogHandler := handlers.NewOperationLogHandler(db)

	// 公开路由
	public := router.Group("/api/v1")
	public.Use(middleware.OperationLogMiddleware(cfg.Audit.ExcludePaths))
	{
		public.POST("/login/access-token", authHandler.Login)
		public.POST("/users/signup", userHandler.Signup)
	}

	// 需要认证的路由
	authorized := router.Group("/api/v1")
	authorized.Use(
		middleware.AuthMiddleware(&cfg.JWT),                       // 认证中间件
		middleware.OperationLogMiddleware(cfg.Audit.ExcludePaths), // 操作日志中间件
	)
	{
		authorized.POST("/login/test-token", authHandler.TestToken)

		// 个人信息
		me := authorized.Group("/users/me")
		{
			me.GET("", middleware.RequireScopes(auth.ApiPermissionUsersMe.Read().Name), userHandler.Me)
			me.PATCH("", middleware.RequireScopes(auth.ApiPermissionUsersMe.Update().Name), userHandler.UpdateMe)
			me.DELETE("", middleware.RequireScopes(auth.ApiPermissionUsersMe.Delete().Name), userHandler.DeleteMe)
		}

		// 当前用户的操作日志和首页统计
		authorized.GET("/users/operation-logs",
			middleware.RequireScopes(auth.ApiPermissionUsersMe.Read().Name), userHandler.OperationLogs)
		authorized.GET("/users/home",
			middleware.RequireScopes(auth.ApiPermissionUsersHome.Read().Name), userHandler.Home)

		// 用户管理
		users := authorized.Group("/users")
		{
			users.GET("", middleware.RequireScopes(auth.ApiPermissionUsers.Read().Name), userHandler.List)
			users.POST("", middleware.RequireScopes(auth.ApiPermissionUsers.Create().Name), userHandler.Create)
			users.GET("/:id", middleware.RequireScopes(auth.ApiPermissionUsers.Read().Name), userHandler.Get)
			users.PUT("/:id", middleware.RequireScopes(auth.ApiPermissionUsers.Update().Name), userHandler.Update)
			users.DELETE("/:id", middleware.RequireScopes(auth.ApiPermissionUsers.Delete().Name), userHandler.Delete)
		}

		// 规则管理
		rules := authorized.Group("/rules")
		{
			rules.GET("", middleware.RequireScopes(auth.ApiPermissionRules.Read().Name), ruleHandler.List)
			rules.GET("/permissions", middleware.RequireScopes(auth.ApiPermissionRules.Read().Name), ruleHandler.Permissions)
			rules.POST("", middleware.RequireScopes(auth.ApiPermissionRules.Create().Name), ruleHandler.Create)
			rules.GET("/:id", middleware.RequireScopes(auth.ApiPermissionRules.Read().Name), ruleHandler.Get)
			rules.PUT("/:id", middleware.RequireScopes(auth.ApiPermissionRules.Update().Name), ruleHandler.Update)
			rules.DELETE("/:id", middleware.RequireScopes(auth.ApiPermissionRules.Delete().Name), ruleHandler.Delete)
		}

		// 角色管理
		roles := authorized.Group("/roles")
		{
			roles.GET("", middleware.RequireScopes(auth.ApiPermissionRoles.Read().Name), roleHandler.List)
			roles.POST("", middleware.RequireScopes(auth.ApiPermissionRoles.Create().Name), roleHandler.Create)
			roles.GET("/:id", middleware.RequireScopes(auth.ApiPermissionRoles.Read().Name), roleHandler.Get)
			roles.PUT("/:id", middleware.RequireScopes(auth.ApiPermissionRoles.Update().Name), roleHandler.Update)
			roles.DELETE("/:id", middleware.RequireScopes(auth.ApiPermissionRoles.Delete().Name), roleHandler.Delete)
		}

		// 操作日志
		operationLogs := authorized.Group("/operation-logs")
		{
			operationLogs.GET("", middleware.RequireScopes(auth.ApiPermissionOperationLogs.Read().Name), operationLogHandler.List)
			operationLogs.GET("/submit", operationLogHandler.Submit)
			operationLogs.GET("/:id", middleware.RequireScopes(auth.ApiPermissionOperationLogs.Read().Name), operationLogHandler.Get)
			operationLogs.DELETE("/:id", middleware.RequireScopes(auth.ApiPermissionOperationLogs.Delete().Name), operationLogHandler.Delete)
		}
	}

	return router
}
