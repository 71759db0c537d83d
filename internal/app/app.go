// internal/app/app.go
package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/Corphon/SmartDeck/internal/auth"
	"github.com/Corphon/SmartDeck/internal/config"
	"github.com/Corphon/SmartDeck/internal/di"
	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/Corphon/SmartDeck/internal/storage"
	"github.com/Corphon/SmartDeck/internal/utils"
)

// 会话清理间隔
const sessionSweepInterval = 5 * time.Minute

// App 应用程序实例
type App struct {
	container *di.Container
	sessions  *services.SessionService
	stopChan  chan struct{}
	stopOnce  sync.Once
}

var (
	instance *App
	appMutex sync.Mutex
)

// GetApp 获取应用实例（单例）
func GetApp() *App {
	appMutex.Lock()
	defer appMutex.Unlock()

	if instance == nil {
		instance = &App{
			container: di.GetContainer(),
			stopChan:  make(chan struct{}),
		}
	}
	return instance
}

// InitServices 按依赖顺序创建服务并注册到全局容器
func InitServices() error {
	return GetApp().initServices(config.GetCurrentConfig())
}

func (a *App) initServices(cfg *config.AppConfig) error {
	container := a.container

	// 1. 日志
	if cfg.LogDir != "" {
		if err := utils.InitLogger(filepath.Join(cfg.LogDir, "smartdeck.log")); err != nil {
			log.Printf("⚠️ 日志文件初始化失败，仅输出到控制台: %v", err)
		}
	}
	level := utils.ParseLogLevel(cfg.LogLevel)
	if cfg.DebugMode {
		level = utils.DEBUG
	}
	utils.GetLogger().SetLogLevel(level)

	// 2. 指标
	metrics := utils.GetMetricsCollector()
	container.Register("metrics", metrics)

	// 3. 文件存储
	fileStorage, err := storage.NewFileStorage(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("创建文件存储失败: %w", err)
	}
	container.Register("storage", fileStorage)

	// 4. 图表与导出
	charts := services.NewChartService()
	container.Register("charts", charts)

	exporter := services.NewDeckExporter(fileStorage, charts, cfg.Subtitle)
	container.Register("exporter", exporter)

	// 5. 会话
	signer, err := auth.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("创建会话签名器失败: %w", err)
	}
	container.Register("signer", signer)

	sessions := services.NewSessionService(cfg.SessionTTL, cfg.DefaultTitle, nil)
	container.Register("sessions", sessions)

	// 6. 演示文稿服务
	deck := services.NewDeckService(sessions, fileStorage, exporter, charts)
	deck.SetMetrics(metrics)
	sessions.OnExpire(deck.ExpireSession)
	container.Register("deck", deck)

	sessions.StartCleanup(sessionSweepInterval)
	a.sessions = sessions

	utils.GetLogger().Info("服务初始化完成", map[string]interface{}{
		"services":   len(container.GetNames()),
		"upload_dir": cfg.UploadDir,
		"ttl":        cfg.SessionTTL.String(),
	})
	return nil
}

// GetDIContainer 返回依赖注入容器
func (a *App) GetDIContainer() *di.Container {
	return a.container
}

// Done 应用关闭时关闭
func (a *App) Done() <-chan struct{} {
	return a.stopChan
}

// Cleanup 停止后台任务
func (a *App) Cleanup() {
	a.stopOnce.Do(func() {
		if a.sessions != nil {
			a.sessions.Stop()
		}
		close(a.stopChan)
	})
}
