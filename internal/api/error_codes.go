// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// 会话
	ErrorSessionNotFound = "SESSION_NOT_FOUND"

	// 幻灯片
	ErrorSlideInvalid     = "SLIDE_INVALID"
	ErrorSlideTypeInvalid = "SLIDE_TYPE_INVALID"
	ErrorSlideNotFound    = "SLIDE_NOT_FOUND"

	// 文件
	ErrorFileUploadFailed = "FILE_UPLOAD_FAILED"
	ErrorFileInvalid      = "FILE_INVALID"
	ErrorFileTooLarge     = "FILE_TOO_LARGE"
	ErrorFileNotFound     = "FILE_NOT_FOUND"

	// 导出
	ErrorExportFailed = "EXPORT_FAILED"
	ErrorChartFailed  = "CHART_RENDER_FAILED"
)
