// internal/models/slide.go
package models

import "strings"

// SlideType 幻灯片类型
type SlideType string

const (
	SlideTypeText  SlideType = "text"
	SlideTypeImage SlideType = "image"
	SlideTypeChart SlideType = "chart"
)

// ParseSlideType 解析表单中的幻灯片类型（不区分大小写）
func ParseSlideType(raw string) (SlideType, bool) {
	switch SlideType(strings.ToLower(strings.TrimSpace(raw))) {
	case SlideTypeText:
		return SlideTypeText, true
	case SlideTypeImage:
		return SlideTypeImage, true
	case SlideTypeChart:
		return SlideTypeChart, true
	default:
		return "", false
	}
}

// Label 返回首字母大写的类型名，用于预览
func (t SlideType) Label() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Slide 单张幻灯片描述，加入注册表后不可修改
type Slide struct {
	Type      SlideType `json:"type" yaml:"type"`
	Heading   string    `json:"heading" yaml:"heading"`
	Points    []string  `json:"points,omitempty" yaml:"points,omitempty"`
	ImagePath string    `json:"image_path,omitempty" yaml:"image_path,omitempty"`
}

// NewTextSlide 创建文本幻灯片，content 按行拆分为要点
func NewTextSlide(heading, content string) Slide {
	return Slide{
		Type:    SlideTypeText,
		Heading: heading,
		Points:  SplitPoints(content),
	}
}

// NewImageSlide 创建图片幻灯片
func NewImageSlide(heading, imagePath string) Slide {
	return Slide{Type: SlideTypeImage, Heading: heading, ImagePath: imagePath}
}

// NewChartSlide 创建图表幻灯片
func NewChartSlide(heading string) Slide {
	return Slide{Type: SlideTypeChart, Heading: heading}
}

// SplitPoints 将多行文本拆分为要点，每一行（包括空行）都是一个要点
func SplitPoints(content string) []string {
	content = strings.ReplaceAll(content, "\r", "")
	return strings.Split(content, "\n")
}

// Clone 返回深拷贝，避免调用方修改注册表内部数据
func (s Slide) Clone() Slide {
	c := s
	if s.Points != nil {
		c.Points = append([]string(nil), s.Points...)
	}
	return c
}

// Deck 标题加有序幻灯片序列
type Deck struct {
	Title  string  `json:"title" yaml:"title"`
	Slides []Slide `json:"slides" yaml:"slides"`
}
