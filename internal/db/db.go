package db

import (
	"errors"
	"fmt"

	"github.com/Xingwd/xadmin/internal/auth"
	"github.com/Xingwd/xadmin/internal/config"
	"github.com/Xingwd/xadmin/internal/db/models"
	"github.com/Xingwd/xadmin/internal/logger"
	"github.com/Xingwd/xadmin/internal/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.DatabaseConfig) error {
	var err error

	gormConfig := &gorm.Config{
		// 禁用默认事务
		SkipDefaultTransaction: true,
	}

	// 连接数据库
	db, err = gorm.Open(postgres.Open(cfg.GetDSN()), gormConfig)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库实例失败: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	// 自动迁移数据库表
	if err := autoMigrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info("数据库初始化成功")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return db
}

// SetDB 设置数据库连接，供测试替换
func SetDB(gdb *gorm.DB) {
	db = gdb
}

// Close 关闭数据库连接
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// autoMigrate 自动迁移数据库表
func autoMigrate() error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Rule{},
		&models.OperationLog{},
	)
}

// EnsureFirstSuperuser 初始化超级管理员，已存在时跳过
func EnsureFirstSuperuser(cfg *config.AdminConfig) error {
	var user models.User
	err := db.Where("username = ?", cfg.Username).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询超级管理员失败: %w", err)
	}

	// 未配置密码时生成随机初始密码，仅在首次创建时输出一次
	password := cfg.Password
	if password == "" {
		password = utils.GeneratePassword(10, 4, 2)
		logger.Warn("未配置超级管理员密码，已生成随机初始密码",
			zap.String("username", cfg.Username),
			zap.String("password", password))
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:       cfg.Username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
		Source:         models.UserSourceSystem,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("创建超级管理员失败: %w", err)
	}
	logger.Info("超级管理员初始化成功")
	return nil
}
