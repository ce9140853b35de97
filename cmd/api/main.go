package main

import (
	"log"

	"MarketDiary/pkg/api"
	"MarketDiary/pkg/auth"
	"MarketDiary/pkg/config"
	"MarketDiary/pkg/database"
	"MarketDiary/pkg/messaging"
	"MarketDiary/pkg/scheduler"
)

func main() {
	log.Println("启动API服务...")

	// 加载配置
	cfg, err := config.LoadConfig(config.GetDefaultConfigPath())
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	// 打开数据库，DSN缺失或连接失败都是启动期硬失败
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v\n", err)
	}
	defer db.Close()

	// 创建会话管理器
	sessions := auth.NewManager(cfg)

	// 创建事件发布器（可选，未配置NATS时跳过）
	var publisher *messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = messaging.NewPublisher(cfg.NATS.URL, cfg.NATS.ClientID)
		if err != nil {
			log.Printf("连接NATS失败: %v，跳过事件发布\n", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// 启动调度器（可选）
	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(db, publisher, cfg.Scheduler.DailySummarySpec)
		if err := sched.Start(); err != nil {
			log.Fatalf("启动调度器失败: %v\n", err)
		}
		defer sched.Stop()
	}

	// 创建API处理程序
	handlers := api.NewHandlers(db, sessions, publisher)

	// 创建并启动服务器
	server := api.NewServer(cfg, sessions)
	server.SetupRoutes(handlers)
	server.Start()
}
