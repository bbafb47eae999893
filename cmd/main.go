package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Xingwd/xadmin/internal/api/router"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/Xingwd/xadmin/internal/db"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/rule"
	"github.com/Xingwd/xadmin/internal/utils"
	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 初始化日志系统
	if err := logger.InitLogger(&cfg.Log); err != nil {
		panic(fmt.Sprintf("初始化日志系统失败: %v", err))
	}
	defer logger.Sync()

	logger.Info("后台管理系统服务启动中...")
	logger.Info("配置加载成功", zap.String("env", cfg.App.Env))

	// 初始化参数校验器
	utils.InitValidator()

	// 初始化数据库
	if err := db.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	logger.Info("数据库初始化成功")

	// 初始化首个超级用户
	if err := db.EnsureFirstSuperuser(&cfg.Admin); err != nil {
		logger.Fatal("初始化超级用户失败", zap.Error(err))
	}

	// 初始化规则树
	if err := rule.Seed(db.GetDB()); err != nil {
		logger.Fatal("初始化规则树失败", zap.Error(err))
	}

	// 设置路由
	engine := router.SetupRouter(cfg, db.GetDB())

	// 创建HTTP服务器
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: engine,
	}

	// 优雅关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 启动HTTP服务器
	go func() {
		logger.Info("HTTP服务器启动成功", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	<-quit
	logger.Info("正在关闭服务器...")

	// 设置关闭超时时间
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := db.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	logger.Info("服务器已安全关闭")
}
