package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Corphon/SmartDeck/internal/auth"
	"github.com/Corphon/SmartDeck/internal/config"
	"github.com/Corphon/SmartDeck/internal/di"
	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/Corphon/SmartDeck/internal/storage"
	"github.com/Corphon/SmartDeck/internal/utils"
)

func newTestApp() *App {
	return &App{container: di.NewContainer(), stopChan: make(chan struct{})}
}

// TestGetApp 单例
func TestGetApp(t *testing.T) {
	app1 := GetApp()
	if app1 == nil {
		t.Fatal("GetApp应该返回一个非nil的应用实例")
	}
	if app2 := GetApp(); app1 != app2 {
		t.Fatal("GetApp应该返回相同的实例")
	}
	if app1.stopChan == nil {
		t.Fatal("应用实例的stopChan应该被初始化")
	}
}

// TestInitServicesRegistersAll 所有服务注册到容器
func TestInitServicesRegistersAll(t *testing.T) {
	tempDir := t.TempDir()
	a := newTestApp()
	defer a.Cleanup()

	cfg := &config.AppConfig{
		UploadDir:    filepath.Join(tempDir, "temp"),
		LogDir:       filepath.Join(tempDir, "logs"),
		SessionTTL:   time.Hour,
		DefaultTitle: "My Presentation",
		Subtitle:     config.DefaultSubtitle,
	}
	if err := a.initServices(cfg); err != nil {
		t.Fatalf("初始化服务失败: %v", err)
	}

	c := a.GetDIContainer()
	for _, name := range []string{"metrics", "storage", "charts", "exporter", "signer", "sessions", "deck"} {
		if !c.Has(name) {
			t.Errorf("服务 %s 未注册", name)
		}
	}

	if _, ok := c.Get("storage").(*storage.FileStorage); !ok {
		t.Error("storage 类型错误")
	}
	if _, ok := c.Get("signer").(*auth.SessionSigner); !ok {
		t.Error("signer 类型错误")
	}
	deck, ok := c.Get("deck").(*services.DeckService)
	if !ok {
		t.Fatal("deck 类型错误")
	}

	session, created := deck.OpenSession("")
	if !created || session.Registry.Title() != "My Presentation" {
		t.Fatalf("会话默认标题错误: %q", session.Registry.Title())
	}
	if deck.Exporter.Subtitle() != config.DefaultSubtitle {
		t.Fatalf("副标题错误: %q", deck.Exporter.Subtitle())
	}
}

// TestCleanupIsIdempotent 重复清理不应 panic
func TestCleanupIsIdempotent(t *testing.T) {
	a := newTestApp()
	if err := a.initServices(&config.AppConfig{UploadDir: t.TempDir(), SessionTTL: time.Hour}); err != nil {
		t.Fatalf("初始化服务失败: %v", err)
	}

	a.Cleanup()
	a.Cleanup()

	select {
	case <-a.Done():
	default:
		t.Fatal("Cleanup 后 Done 应关闭")
	}
}

// TestInitServicesLogLevel LOG_LEVEL 控制日志级别，调试模式强制 DEBUG
func TestInitServicesLogLevel(t *testing.T) {
	logger := utils.GetLogger()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.SetLogLevel(utils.INFO)
	})

	a := newTestApp()
	defer a.Cleanup()
	if err := a.initServices(&config.AppConfig{UploadDir: t.TempDir(), SessionTTL: time.Hour, LogLevel: "error"}); err != nil {
		t.Fatalf("初始化服务失败: %v", err)
	}

	buf.Reset()
	logger.Info("info-line", nil)
	logger.Error("error-line", nil)
	if strings.Contains(buf.String(), "info-line") {
		t.Error("ERROR 级别下不应输出 INFO 日志")
	}
	if !strings.Contains(buf.String(), "error-line") {
		t.Error("ERROR 日志应被输出")
	}

	b := newTestApp()
	defer b.Cleanup()
	if err := b.initServices(&config.AppConfig{UploadDir: t.TempDir(), SessionTTL: time.Hour, LogLevel: "error", DebugMode: true}); err != nil {
		t.Fatalf("初始化服务失败: %v", err)
	}

	buf.Reset()
	logger.Debug("debug-line", nil)
	if !strings.Contains(buf.String(), "debug-line") {
		t.Error("调试模式应输出 DEBUG 日志")
	}
}
