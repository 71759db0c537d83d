// internal/storage/file_storage.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ChartFileName 图表幻灯片的固定输出文件，每次生成图表时覆盖
const ChartFileName = "chart.png"

// 允许上传的图片扩展名
var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// FileStorage 管理上传图片和生成的图表文件
type FileStorage struct {
	BaseDir string

	// 并发控制
	fileLocks sync.Map // 文件级别锁 path -> *sync.RWMutex
}

// NewFileStorage 创建文件存储服务
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	return &FileStorage{BaseDir: baseDir}, nil
}

// 获取文件锁
func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// IsAllowedImage 检查文件名是否为支持的图片格式
func IsAllowedImage(filename string) bool {
	return allowedImageExts[strings.ToLower(filepath.Ext(filename))]
}

// UploadPath 返回会话上传文件的路径：<base>/<session>/temp_<filename>
func (fs *FileStorage) UploadPath(sessionID, filename string) string {
	return filepath.Join(fs.BaseDir, sessionID, "temp_"+filepath.Base(filename))
}

// SaveUpload 保存上传的图片，同名文件会被覆盖
func (fs *FileStorage) SaveUpload(sessionID, filename string, r io.Reader) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || sessionID == ".." {
		return "", fmt.Errorf("无效的会话ID: %q", sessionID)
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("无效的文件名: %q", filename)
	}
	if !IsAllowedImage(name) {
		return "", fmt.Errorf("不支持的图片格式: %s", filepath.Ext(name))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("读取上传内容失败: %w", err)
	}

	fullPath := fs.UploadPath(sessionID, name)
	if err := fs.writeAtomic(fullPath, data); err != nil {
		return "", err
	}

	return fullPath, nil
}

// ChartPath 图表图片的固定路径
func (fs *FileStorage) ChartPath() string {
	return filepath.Join(fs.BaseDir, ChartFileName)
}

// WriteChart 覆盖写入图表图片
func (fs *FileStorage) WriteChart(data []byte) (string, error) {
	path := fs.ChartPath()
	if err := fs.writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadFile 在读锁保护下读取文件
func (fs *FileStorage) ReadFile(fullPath string) ([]byte, error) {
	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return content, nil
}

// DeleteSession 删除会话的全部上传文件
func (fs *FileStorage) DeleteSession(sessionID string) error {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || sessionID == ".." {
		return fmt.Errorf("无效的会话ID: %q", sessionID)
	}

	fullPath := filepath.Join(fs.BaseDir, sessionID)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("删除目录失败: %w", err)
	}

	// 清除该目录下的文件锁
	fs.fileLocks.Range(func(key, _ any) bool {
		if k := key.(string); strings.HasPrefix(k, fullPath) {
			fs.fileLocks.Delete(k)
		}
		return true
	})

	return nil
}

// writeAtomic 原子性文件写入：先写临时文件再重命名
func (fs *FileStorage) writeAtomic(fullPath string, content []byte) error {
	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("保存临时文件失败: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("保存文件失败: %w", err)
	}

	return nil
}
