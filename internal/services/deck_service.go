// internal/services/deck_service.go
package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Corphon/SmartDeck/internal/errors"
	"github.com/Corphon/SmartDeck/internal/models"
	"github.com/Corphon/SmartDeck/internal/utils"
)

// 预览地址
const (
	ChartPreviewURL     = "/api/deck/chart.png"
	imagePreviewURLBase = "/api/deck/images/"
)

// EventPublisher 将会话事件推送给已打开的页面
type EventPublisher interface {
	PublishDeckEvent(event models.DeckEvent)
}

// UploadStore 图片上传所需的存储操作
type UploadStore interface {
	SaveUpload(sessionID, filename string, r io.Reader) (string, error)
	ReadFile(fullPath string) ([]byte, error)
	DeleteSession(sessionID string) error
}

// DeckService 处理会话内的幻灯片编辑与导出
type DeckService struct {
	Sessions *SessionService
	Uploads  UploadStore
	Exporter *DeckExporter
	Charts   ChartRenderer

	metrics   *utils.MetricsCollector
	logger    *utils.Logger
	publisher EventPublisher
}

// NewDeckService 创建演示文稿服务
func NewDeckService(sessions *SessionService, uploads UploadStore, exporter *DeckExporter, charts ChartRenderer) *DeckService {
	return &DeckService{
		Sessions: sessions,
		Uploads:  uploads,
		Exporter: exporter,
		Charts:   charts,
		metrics:  utils.GetMetricsCollector(),
		logger:   utils.GetLogger(),
	}
}

// SetMetrics 替换指标收集器
func (s *DeckService) SetMetrics(m *utils.MetricsCollector) {
	if m != nil {
		s.metrics = m
	}
}

// SetPublisher 设置事件推送目标
func (s *DeckService) SetPublisher(p EventPublisher) {
	s.publisher = p
}

func (s *DeckService) session(sessionID string) (*Session, error) {
	session, ok := s.Sessions.Get(sessionID)
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("会话不存在: %s", sessionID), nil)
	}
	return session, nil
}

// AddTextSlide 添加文本幻灯片，content 每行一个要点
func (s *DeckService) AddTextSlide(sessionID, heading, content string) (*models.SlidePreview, error) {
	return s.add(sessionID, models.NewTextSlide(heading, content))
}

// AddImageSlide 保存上传图片并添加图片幻灯片；没有上传文件时不添加
func (s *DeckService) AddImageSlide(sessionID, heading, filename string, r io.Reader) (*models.SlidePreview, error) {
	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}
	if r == nil || strings.TrimSpace(filename) == "" {
		return nil, errors.NewValidationError("请先上传图片", nil)
	}

	path, err := s.Uploads.SaveUpload(sessionID, filename, r)
	if err != nil {
		return nil, errors.NewValidationError("保存上传图片失败", err)
	}
	s.metrics.IncrementCounter(utils.MetricUploadsStored)

	return s.add(sessionID, models.NewImageSlide(heading, path))
}

// AddChartSlide 添加图表幻灯片
func (s *DeckService) AddChartSlide(sessionID, heading string) (*models.SlidePreview, error) {
	return s.add(sessionID, models.NewChartSlide(heading))
}

func (s *DeckService) add(sessionID string, slide models.Slide) (*models.SlidePreview, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	index := session.Registry.Append(slide)
	preview := previewOf(index, slide)

	s.metrics.IncrementCounter(utils.MetricSlidesAdded)
	s.logger.Info("幻灯片已添加", map[string]interface{}{
		"session": sessionID,
		"index":   index,
		"type":    string(slide.Type),
	})
	s.publish(models.EventSlideAdded, sessionID, preview)

	return &preview, nil
}

// SetTitle 设置演示文稿标题
func (s *DeckService) SetTitle(sessionID, title string) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	session.Registry.SetTitle(title)
	s.publish(models.EventTitleChanged, sessionID, map[string]string{"title": title})
	return nil
}

// Preview 返回标题和所有幻灯片的预览
func (s *DeckService) Preview(sessionID string) (*models.DeckPreview, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	deck := session.Registry.Snapshot()
	preview := &models.DeckPreview{
		Title:  deck.Title,
		Slides: make([]models.SlidePreview, 0, len(deck.Slides)),
	}
	for i, slide := range deck.Slides {
		preview.Slides = append(preview.Slides, previewOf(i, slide))
	}
	return preview, nil
}

// ImageFile 读取图片幻灯片引用的文件
func (s *DeckService) ImageFile(sessionID string, index int) ([]byte, string, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, "", err
	}

	slide, ok := session.Registry.At(index)
	if !ok || slide.Type != models.SlideTypeImage {
		return nil, "", errors.NewNotFoundError(fmt.Sprintf("图片幻灯片不存在: %d", index), nil)
	}

	data, err := s.Uploads.ReadFile(slide.ImagePath)
	if err != nil {
		return nil, "", errors.NewIOError("读取图片失败", err)
	}
	return data, http.DetectContentType(data), nil
}

// ChartImage 渲染示例图表用于预览
func (s *DeckService) ChartImage() ([]byte, error) {
	data, err := s.Charts.RenderSampleChart()
	if err != nil {
		return nil, errors.NewProcessingError("渲染图表失败", err)
	}
	return data, nil
}

// Generate 导出当前会话的演示文稿。title 非空时先更新标题。
func (s *DeckService) Generate(sessionID, title string) (*models.ExportResult, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if title != "" {
		session.Registry.SetTitle(title)
	}

	deck := session.Registry.Snapshot()
	start := time.Now()

	data, err := s.Exporter.Export(deck.Title, deck.Slides)
	if err != nil {
		s.metrics.IncrementCounter(utils.MetricExportFailures)
		s.logger.Error("演示文稿导出失败", map[string]interface{}{
			"session": sessionID,
			"slides":  len(deck.Slides),
			"error":   err.Error(),
		})
		return nil, errors.NewProcessingError("生成演示文稿失败", err)
	}

	duration := time.Since(start)
	s.metrics.IncrementCounter(utils.MetricDecksGenerated)
	s.metrics.RecordDuration(utils.MetricExportDurationMs, duration)
	s.metrics.RecordHistogram(utils.MetricDeckSizeBytes, int64(len(data)))

	result := &models.ExportResult{
		Title:       deck.Title,
		FileName:    models.DefaultExportFileName,
		SlideCount:  len(deck.Slides) + 1,
		FileSize:    int64(len(data)),
		GeneratedAt: time.Now(),
		Data:        data,
	}

	s.logger.Info("演示文稿已生成", map[string]interface{}{
		"session":     sessionID,
		"slides":      result.SlideCount,
		"bytes":       result.FileSize,
		"duration_ms": duration.Milliseconds(),
	})
	s.publish(models.EventDeckGenerated, sessionID, result)

	return result, nil
}

// ApplyDefaults 更新新会话默认标题和导出副标题，空值表示不修改
func (s *DeckService) ApplyDefaults(title, subtitle string) {
	if title != "" {
		s.Sessions.SetDefaultTitle(title)
	}
	if subtitle != "" {
		s.Exporter.SetSubtitle(subtitle)
	}
}

// OpenSession 按 cookie 中的会话ID取得会话，不存在时新建
func (s *DeckService) OpenSession(sessionID string) (*Session, bool) {
	session, created := s.Sessions.GetOrCreate(sessionID)
	if created {
		s.metrics.SetGauge(utils.MetricActiveSessions, int64(s.Sessions.Count()))
	}
	return session, created
}

// ExpireSession 会话过期时清理上传文件
func (s *DeckService) ExpireSession(sessionID string) {
	if err := s.Uploads.DeleteSession(sessionID); err != nil {
		s.logger.Warn("清理会话文件失败", map[string]interface{}{
			"session": sessionID,
			"error":   err.Error(),
		})
	}
	s.metrics.SetGauge(utils.MetricActiveSessions, int64(s.Sessions.Count()))
}

func (s *DeckService) publish(eventType, sessionID string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishDeckEvent(models.NewDeckEvent(eventType, sessionID, data))
}

func previewOf(index int, slide models.Slide) models.SlidePreview {
	p := models.SlidePreview{
		Index:   index,
		Number:  index + 1,
		Type:    slide.Type,
		Label:   slide.Type.Label(),
		Heading: slide.Heading,
		Points:  slide.Points,
	}
	switch slide.Type {
	case models.SlideTypeImage:
		p.ImageURL = fmt.Sprintf("%s%d", imagePreviewURLBase, index)
	case models.SlideTypeChart:
		p.ChartURL = ChartPreviewURL
	}
	return p
}
