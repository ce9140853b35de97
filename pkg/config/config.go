package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`

	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	NATS struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"client_id"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Scheduler struct {
		Enabled          bool   `yaml:"enabled"`
		DailySummarySpec string `yaml:"daily_summary_spec"`
	} `yaml:"scheduler"`
}

// DefaultConfig 内置默认配置
func DefaultConfig() *Config {
	var config Config

	config.App.Name = "market-diary"
	config.App.Env = "dev"
	config.Auth.Username = "admin"
	config.Auth.Password = "market2024"
	config.NATS.ClientID = "market-diary"
	config.API.Port = "8080"
	config.API.ReadTimeout = 10 * time.Second
	config.API.WriteTimeout = 10 * time.Second
	config.Scheduler.DailySummarySpec = "30 0 * * *"

	return &config
}

// LoadConfig 从文件加载配置
// 配置文件不存在时仅使用默认值和环境变量（服务必须可以纯靠环境变量启动）
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	// 环境变量覆盖
	overrideFromEnv(config)

	return config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用配置
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}

	// 认证配置
	if env := os.Getenv("AUTH_USERNAME"); env != "" {
		config.Auth.Username = env
	}
	if env := os.Getenv("AUTH_PASSWORD"); env != "" {
		config.Auth.Password = env
	}

	// 数据库配置
	if env := os.Getenv("DATABASE_URL"); env != "" {
		config.Database.DSN = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}
	if env := os.Getenv("NATS_CLIENT_ID"); env != "" {
		config.NATS.ClientID = env
	}

	// API配置
	if env := os.Getenv("PORT"); env != "" {
		config.API.Port = env
	}

	// 调度器配置
	if env := os.Getenv("SCHEDULER_ENABLED"); env != "" {
		config.Scheduler.Enabled = env == "true" || env == "1"
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
