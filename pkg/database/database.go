package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"MarketDiary/pkg/config"
	"MarketDiary/pkg/model"
)

// Database 数据库连接
type Database struct {
	db *gorm.DB
}

// New 创建数据库连接并完成表迁移
// DSN缺失是启动期硬失败，不允许延迟到首次调用才报错
func New(cfg *config.Config) (*Database, error) {
	dsn := cfg.Database.DSN
	if dsn == "" {
		return nil, fmt.Errorf("数据库DSN未配置，请设置DATABASE_URL")
	}

	return Open(postgres.Open(dsn))
}

// Open 使用指定方言打开数据库并完成迁移（测试中用sqlite替代postgres）
func Open(dialector gorm.Dialector) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("测试数据库连接失败: %w", err)
	}

	// 迁移数据表
	if err := db.AutoMigrate(&model.DiaryEntry{}, &model.WatchlistEntry{}); err != nil {
		return nil, fmt.Errorf("迁移数据表失败: %w", err)
	}

	return &Database{db: db}, nil
}

// Ping 检查数据库连接状态
func (d *Database) Ping() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close 关闭数据库连接
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Diary 日记条目存取
func (d *Database) Diary() *DiaryDB {
	return &DiaryDB{db: d.db}
}

// Watchlist 观察列表存取
func (d *Database) Watchlist() *WatchlistDB {
	return &WatchlistDB{db: d.db}
}

// now 统一的时间戳格式
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
