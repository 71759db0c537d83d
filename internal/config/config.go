// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port         string `json:"port"`
	DataDir      string `json:"data_dir"`
	UploadDir    string `json:"upload_dir"`
	TemplatesDir string `json:"templates_dir"`
	LogDir       string `json:"log_dir"`
	LogLevel     string `json:"log_level"`
	DebugMode    bool   `json:"debug_mode"`

	// 会话
	SessionTTL    time.Duration `json:"session_ttl"`
	SessionSecret string        `json:"-"`

	// 演示文稿默认值
	DefaultTitle  string `json:"default_title"`
	Subtitle      string `json:"subtitle"`
	MaxUploadSize int64  `json:"max_upload_size"`
}

// Config 存储从环境变量读取的配置
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	DataDir       string        `env:"DATA_DIR" envDefault:"data"`
	UploadDir     string        `env:"UPLOAD_DIR" envDefault:"temp"`
	TemplatesDir  string        `env:"TEMPLATES_DIR" envDefault:"web/templates"`
	LogDir        string        `env:"LOG_DIR" envDefault:"logs"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	DebugMode     bool          `env:"DEBUG_MODE" envDefault:"true"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionSecret string        `env:"SESSION_SECRET"`
	DefaultTitle  string        `env:"DEFAULT_TITLE" envDefault:"My Presentation"`
	MaxUploadSize int64         `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
}

const (
	// DefaultTitle 新会话的默认标题
	DefaultTitle = "My Presentation"
	// DefaultSubtitle 标题页副标题
	DefaultSubtitle = "Auto-Generated Smart Presentation"
)

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	if cfg.SessionSecret == "" {
		// 只记录警告，不返回错误
		log.Println("警告: 未设置 SESSION_SECRET，将在启动时生成随机会话密钥，重启后会话失效")
	}

	return cfg, nil
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = fromBase(baseConfig)

	// 尝试从文件加载已保存的演示文稿默认值
	if data, err := os.ReadFile(configFile); err == nil {
		var saved AppConfig
		if json.Unmarshal(data, &saved) == nil {
			if saved.DefaultTitle != "" {
				currentConfig.DefaultTitle = saved.DefaultTitle
			}
			if saved.Subtitle != "" {
				currentConfig.Subtitle = saved.Subtitle
			}
		}
	}

	return saveLocked()
}

// fromBase 用环境配置构造 AppConfig
func fromBase(base *Config) *AppConfig {
	return &AppConfig{
		Port:          base.Port,
		DataDir:       base.DataDir,
		UploadDir:     base.UploadDir,
		TemplatesDir:  base.TemplatesDir,
		LogDir:        base.LogDir,
		LogLevel:      base.LogLevel,
		DebugMode:     base.DebugMode,
		SessionTTL:    base.SessionTTL,
		SessionSecret: base.SessionSecret,
		DefaultTitle:  base.DefaultTitle,
		Subtitle:      DefaultSubtitle,
		MaxUploadSize: base.MaxUploadSize,
	}
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 未初始化时退回到环境变量
		baseConfig, err := Load()
		if err != nil {
			baseConfig = &Config{Port: "8080", DataDir: "data", UploadDir: "temp",
				TemplatesDir: "web/templates", LogDir: "logs", LogLevel: "info", SessionTTL: 2 * time.Hour,
				DefaultTitle: DefaultTitle, MaxUploadSize: 10 << 20}
		}
		return fromBase(baseConfig)
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateDeckDefaults 更新演示文稿默认标题与副标题
func UpdateDeckDefaults(title, subtitle string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}

	if title != "" {
		currentConfig.DefaultTitle = title
	}
	if subtitle != "" {
		currentConfig.Subtitle = subtitle
	}

	return saveLocked()
}

func saveLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
