// internal/models/export.go
package models

import (
	"time"
)

// PPTXContentType pptx 文件的 MIME 类型
const PPTXContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// DefaultExportFileName 下载文件名
const DefaultExportFileName = "presentation.pptx"

// ExportResult 导出结果
type ExportResult struct {
	Title       string    `json:"title"`
	FileName    string    `json:"file_name"`
	SlideCount  int       `json:"slide_count"` // 包含标题页
	FileSize    int64     `json:"file_size"`
	GeneratedAt time.Time `json:"generated_at"`
	Data        []byte    `json:"-"`
}

// SlidePreview 预览页中的一行
type SlidePreview struct {
	Index    int       `json:"index"`
	Number   int       `json:"number"`
	Type     SlideType `json:"type"`
	Label    string    `json:"label"`
	Heading  string    `json:"heading"`
	Points   []string  `json:"points,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	ChartURL string    `json:"chart_url,omitempty"`
}

// DeckPreview 整个会话的预览数据
type DeckPreview struct {
	Title  string         `json:"title"`
	Slides []SlidePreview `json:"slides"`
}
