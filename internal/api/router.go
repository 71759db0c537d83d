// internal/api/router.go
package api

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/Corphon/SmartDeck/internal/auth"
	"github.com/Corphon/SmartDeck/internal/config"
	"github.com/Corphon/SmartDeck/internal/di"
	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/Corphon/SmartDeck/internal/utils"
	"github.com/gin-gonic/gin"
)

// 生成接口限流：每个会话每分钟 20 次
const (
	generateRateLimit  = 20
	generateRateWindow = time.Minute
)

// SetupRouter 配置HTTP路由，服务全部来自全局容器
func SetupRouter() (*gin.Engine, error) {
	return NewRouter(di.GetContainer(), config.GetCurrentConfig())
}

// NewRouter 根据容器中的服务构建路由
func NewRouter(container *di.Container, cfg *config.AppConfig) (*gin.Engine, error) {
	deckService, err := di.Resolve[*services.DeckService](container, "deck")
	if err != nil {
		return nil, fmt.Errorf("演示文稿服务未正确初始化: %w", err)
	}
	signer, err := di.Resolve[*auth.SessionSigner](container, "signer")
	if err != nil {
		return nil, fmt.Errorf("会话签名器未正确初始化: %w", err)
	}
	metrics, err := di.Resolve[*utils.MetricsCollector](container, "metrics")
	if err != nil {
		return nil, fmt.Errorf("指标服务未正确初始化: %w", err)
	}

	// 预览事件经 hub 推送给同一会话的页面
	hub := NewDeckHub()
	deckService.SetPublisher(hub)
	container.Register("hub", hub)

	handler := NewHandler(deckService, metrics, hub, cfg.MaxUploadSize, cfg.DebugMode)

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(RequestIDMiddleware())
	r.Use(corsMiddleware())

	r.LoadHTMLGlob(filepath.Join(cfg.TemplatesDir, "*.html"))

	r.GET("/health", handler.Health)

	session := SessionMiddleware(signer, deckService)

	// ===============================
	// 页面路由
	// ===============================
	r.GET("/", session, handler.IndexPage)
	r.GET("/ws/deck", session, handler.DeckWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		api.GET("/metrics", handler.GetMetrics)

		settingsGroup := api.Group("/settings")
		{
			settingsGroup.GET("", handler.GetSettings)
			settingsGroup.PUT("", handler.SaveSettings)
		}

		deckGroup := api.Group("/deck", session)
		{
			deckGroup.GET("", handler.GetDeck)
			deckGroup.PUT("/title", handler.SetTitle)
			deckGroup.POST("/slides", handler.AddSlide)
			deckGroup.POST("/generate",
				RateLimitBySession(NewRateLimiter(), generateRateLimit, generateRateWindow),
				handler.GenerateDeck)
			deckGroup.GET("/chart.png", handler.ChartPreview)
			deckGroup.GET("/images/:index", handler.ImagePreview)
		}
	}

	return r, nil
}
