package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"MarketDiary/pkg/auth"
	"MarketDiary/pkg/config"
)

// Server API服务器
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

// NewServer 创建新的API服务器，会话中间件在这里挂到全部路由上
func NewServer(cfg *config.Config, sessions *auth.Manager) *Server {
	router := gin.New()

	// 设置中间件
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(sessions.Middleware())

	srv := &http.Server{
		Addr:         ":" + cfg.API.Port,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	return &Server{
		router: router,
		srv:    srv,
	}
}

// SetupRoutes 设置路由
func (s *Server) SetupRoutes(handlers *Handlers) {
	// 健康检查
	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/ready", handlers.ReadinessCheck)

	// 登录页和认证端点
	s.router.GET("/login", handlers.LoginPage)
	authGroup := s.router.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/logout", handlers.Logout)
	}

	// 日记接口
	s.router.GET("/diary", handlers.ListDiary)
	s.router.POST("/diary", handlers.CreateDiary)
	s.router.PUT("/diary", handlers.UpdateDiary)
	s.router.DELETE("/diary", handlers.DeleteDiary)
	s.router.POST("/diary/batch", handlers.CreateDiaryBatch)

	// 观察列表接口
	s.router.GET("/watchlist", handlers.ListWatchlist)
	s.router.POST("/watchlist", handlers.CreateWatchlist)
	s.router.PUT("/watchlist", handlers.UpdateWatchlist)
	s.router.DELETE("/watchlist", handlers.DeleteWatchlist)
	s.router.POST("/watchlist/batch", handlers.CreateWatchlistBatch)

	// 统计接口
	s.router.GET("/stats/summary", handlers.StatsSummary)
}

// Start 启动服务器并等待中断信号
func (s *Server) Start() {
	// 在goroutine中启动服务器
	go func() {
		log.Printf("API服务器启动在 %s\n", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v\n", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务器关闭失败: %v\n", err)
	}

	log.Println("服务器已关闭")
}
