package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"MarketDiary/pkg/database"
	"MarketDiary/pkg/messaging"
	"MarketDiary/pkg/model"
	"MarketDiary/pkg/stats"
)

// Scheduler 后台任务调度器
type Scheduler struct {
	cron        *cron.Cron
	db          *database.Database
	publisher   *messaging.Publisher // 可为nil，未配置NATS时只记日志
	summarySpec string
}

// NewScheduler 创建任务调度器
func NewScheduler(db *database.Database, publisher *messaging.Publisher, summarySpec string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		db:          db,
		publisher:   publisher,
		summarySpec: summarySpec,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	// 每日凌晨生成前一日日记汇总
	if _, err := s.cron.AddFunc(s.summarySpec, s.publishDailySummary); err != nil {
		return fmt.Errorf("注册每日汇总任务失败: %w", err)
	}

	// 每5分钟检查数据库健康状态
	if _, err := s.cron.AddFunc("@every 5m", s.checkStoreHealth); err != nil {
		return fmt.Errorf("注册健康检查任务失败: %w", err)
	}

	s.cron.Start()
	log.Println("任务调度器已启动")
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// publishDailySummary 汇总前一日的日记条目并发布到事件流
func (s *Scheduler) publishDailySummary() {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	entries, err := s.db.Diary().List(model.DiaryFilter{
		StartDate: yesterday,
		EndDate:   yesterday,
	})
	if err != nil {
		log.Printf("生成每日汇总失败: %v", err)
		return
	}

	summary := stats.Summarize(entries)
	log.Printf("昨日(%s)日记汇总: 共%d条 买入%d 卖出%d 所感%d",
		yesterday, summary.Total, summary.Buys, summary.Sells, summary.Notes)

	if s.publisher == nil {
		return
	}

	payload := map[string]interface{}{
		"date":    yesterday,
		"summary": summary,
	}
	if err := s.publisher.Publish("stats.daily", payload); err != nil {
		log.Printf("发布每日汇总事件失败: %v", err)
	}
}

// checkStoreHealth 监控数据库连接状态
func (s *Scheduler) checkStoreHealth() {
	if err := s.db.Ping(); err != nil {
		log.Printf("数据库健康检查失败: %v", err)
	}
}
