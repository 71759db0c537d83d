// internal/api/handlers.go
package api

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Corphon/SmartDeck/internal/config"
	"github.com/Corphon/SmartDeck/internal/errors"
	"github.com/Corphon/SmartDeck/internal/models"
	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/Corphon/SmartDeck/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	DeckService   *services.DeckService
	Metrics       *utils.MetricsCollector
	Hub           *DeckHub
	Response      *ResponseHelper
	MaxUploadSize int64
}

// SetTitleRequest 设置标题请求
type SetTitleRequest struct {
	Title string `json:"title"`
}

// SettingsRequest 演示文稿默认值
type SettingsRequest struct {
	DefaultTitle string `json:"default_title"`
	Subtitle     string `json:"subtitle"`
}

// multipartMemory 表单解析时保存在内存中的上限，其余写入临时文件
const multipartMemory = 8 << 20

// NewHandler 创建处理器
func NewHandler(deck *services.DeckService, metrics *utils.MetricsCollector, hub *DeckHub, maxUploadSize int64, showDetails bool) *Handler {
	return &Handler{
		DeckService:   deck,
		Metrics:       metrics,
		Hub:           hub,
		Response:      NewResponseHelper(showDetails),
		MaxUploadSize: maxUploadSize,
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// IndexPage 返回主页
func (h *Handler) IndexPage(c *gin.Context) {
	preview, err := h.DeckService.Preview(sessionID(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "加载会话失败")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":      preview.Title,
		"Slides":     preview.Slides,
		"SlideTypes": []models.SlideType{models.SlideTypeText, models.SlideTypeImage, models.SlideTypeChart},
	})
}

// GetDeck 当前会话的标题和幻灯片预览
func (h *Handler) GetDeck(c *gin.Context) {
	preview, err := h.DeckService.Preview(sessionID(c))
	if err != nil {
		h.Response.AppError(c, err, ErrorSessionNotFound)
		return
	}
	h.Response.Success(c, preview)
}

// SetTitle 设置演示文稿标题
func (h *Handler) SetTitle(c *gin.Context) {
	var req SetTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "无效的请求格式", err.Error())
		return
	}

	if err := h.DeckService.SetTitle(sessionID(c), req.Title); err != nil {
		h.Response.AppError(c, err, "")
		return
	}
	h.Response.Success(c, gin.H{"title": req.Title}, "标题已更新")
}

// AddSlide 添加一张幻灯片
// 表单字段: type (text|image|chart), heading, content, image
func (h *Handler) AddSlide(c *gin.Context) {
	if h.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize+1<<20)
	}

	// 超限的请求体按文件错误处理
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && err != http.ErrNotMultipart {
		if isBodyTooLarge(err) {
			h.Response.Error(c, http.StatusBadRequest, ErrorFileInvalid, "图片超过大小限制")
			return
		}
		h.Response.BadRequest(c, "无效的表单数据", err.Error())
		return
	}

	slideType, ok := models.ParseSlideType(c.PostForm("type"))
	if !ok {
		h.Response.Error(c, http.StatusBadRequest, ErrorSlideTypeInvalid, "不支持的幻灯片类型: "+c.PostForm("type"))
		return
	}

	sid := sessionID(c)
	heading := c.PostForm("heading")

	var (
		preview *models.SlidePreview
		err     error
	)
	switch slideType {
	case models.SlideTypeText:
		preview, err = h.DeckService.AddTextSlide(sid, heading, c.PostForm("content"))
	case models.SlideTypeChart:
		preview, err = h.DeckService.AddChartSlide(sid, heading)
	case models.SlideTypeImage:
		preview, err = h.addImageSlide(c, sid, heading)
	}

	if err != nil {
		code := ErrorSlideInvalid
		if slideType == models.SlideTypeImage {
			code = ErrorFileInvalid
		}
		if !errors.IsValidationError(err) {
			code = ""
		}
		h.Response.AppError(c, err, code)
		return
	}

	h.Response.Created(c, preview, slideType.Label()+" Slide Added!")
}

// isBodyTooLarge 请求体是否被 MaxBytesReader 截断
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func (h *Handler) addImageSlide(c *gin.Context, sid, heading string) (*models.SlidePreview, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return h.DeckService.AddImageSlide(sid, heading, "", nil)
		}
		return nil, errors.NewValidationError("读取上传文件失败", err)
	}

	if h.MaxUploadSize > 0 && file.Size > h.MaxUploadSize {
		return nil, errors.NewValidationError("图片超过大小限制", nil)
	}

	return h.openAndAdd(sid, heading, file)
}

func (h *Handler) openAndAdd(sid, heading string, file *multipart.FileHeader) (*models.SlidePreview, error) {
	f, err := file.Open()
	if err != nil {
		return nil, errors.NewIOError("打开上传文件失败", err)
	}
	defer f.Close()

	return h.DeckService.AddImageSlide(sid, heading, file.Filename, f)
}

// GenerateDeck 生成并下载演示文稿；可选表单字段 title 会先更新标题
func (h *Handler) GenerateDeck(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))

	result, err := h.DeckService.Generate(sessionID(c), title)
	if err != nil {
		code := ErrorExportFailed
		if errors.IsNotFoundError(err) {
			code = ErrorSessionNotFound
		}
		h.Response.AppError(c, err, code)
		return
	}

	c.Header("X-Slide-Count", strconv.Itoa(result.SlideCount))
	h.Response.DownloadResponse(c, result.Data, result.FileName, models.PPTXContentType)
}

// ChartPreview 示例图表预览
func (h *Handler) ChartPreview(c *gin.Context) {
	data, err := h.DeckService.ChartImage()
	if err != nil {
		h.Response.AppError(c, err, ErrorChartFailed)
		return
	}
	h.Response.InlineResponse(c, data, "image/png")
}

// ImagePreview 图片幻灯片的原图
func (h *Handler) ImagePreview(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.Response.BadRequest(c, "无效的幻灯片序号")
		return
	}

	data, contentType, err := h.DeckService.ImageFile(sessionID(c), index)
	if err != nil {
		code := ErrorFileNotFound
		if errors.IsNotFoundError(err) {
			code = ErrorSlideNotFound
		}
		h.Response.AppError(c, err, code)
		return
	}
	h.Response.InlineResponse(c, data, contentType)
}

// DeckWebSocket 预览页实时事件
func (h *Handler) DeckWebSocket(c *gin.Context) {
	h.Hub.ServeSession(c)
}

// GetSettings 当前默认值
func (h *Handler) GetSettings(c *gin.Context) {
	cfg := config.GetCurrentConfig()
	h.Response.Success(c, gin.H{
		"default_title":   cfg.DefaultTitle,
		"subtitle":        h.DeckService.Exporter.Subtitle(),
		"session_ttl":     cfg.SessionTTL.String(),
		"max_upload_size": cfg.MaxUploadSize,
	})
}

// SaveSettings 保存默认标题和副标题，对之后新建的会话和导出生效
func (h *Handler) SaveSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "无效的请求格式", err.Error())
		return
	}
	req.DefaultTitle = strings.TrimSpace(req.DefaultTitle)
	req.Subtitle = strings.TrimSpace(req.Subtitle)
	if req.DefaultTitle == "" && req.Subtitle == "" {
		h.Response.BadRequest(c, "至少需要提供一个字段")
		return
	}

	if err := config.UpdateDeckDefaults(req.DefaultTitle, req.Subtitle); err != nil {
		h.Response.InternalError(c, "保存设置失败", err.Error())
		return
	}
	h.DeckService.ApplyDefaults(req.DefaultTitle, req.Subtitle)

	h.Response.Success(c, req, "设置已保存")
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":    "ok",
		"sessions":  h.DeckService.Sessions.Count(),
		"websocket": h.Hub.Status(),
	})
}

// GetMetrics 运行指标
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, h.Metrics.GetMetrics())
}
