package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	JWT      JWTConfig
	Database DatabaseConfig
	Log      LogConfig
	Admin    AdminConfig
	Audit    AuditConfig
}

type AppConfig struct {
	Name             string
	Env              string
	Host             string
	Port             int
	ReadTimeout      int  `mapstructure:"read_timeout"`
	WriteTimeout     int  `mapstructure:"write_timeout"`
	OpenRegistration bool `mapstructure:"open_registration"` // 是否开放注册
}

type JWTConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	ExpiresIn int    `mapstructure:"expires_in"` // 过期时间，单位分钟
	Issuer    string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 单位秒
}

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string `mapstructure:"file_path"`
}

// AdminConfig 初始超级管理员
type AdminConfig struct {
	Username string
	Password string
}

// AuditConfig 操作日志配置
type AuditConfig struct {
	ExcludePaths []string `mapstructure:"exclude_paths"` // 不记录操作日志的路径
}

var globalConfig *Config

// LoadConfig 加载配置文件，configPath为配置目录或配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		v.AddConfigPath(configPath)
		v.SetConfigName("app")
		v.SetConfigType("yaml")
	} else {
		v.SetConfigFile(configPath)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	globalConfig = config
	return config, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return globalConfig
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode)
}

// GetConnMaxLifetime 获取连接最大生命周期
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetime) * time.Second
}

// GetJWTExpiration 获取令牌过期时长
func (c *JWTConfig) GetJWTExpiration() time.Duration {
	return time.Duration(c.ExpiresIn) * time.Minute
}
