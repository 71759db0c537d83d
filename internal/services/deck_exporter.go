// internal/services/deck_exporter.go
package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"github.com/Corphon/SmartDeck/internal/models"
	ppt "github.com/VantageDataChat/GoPPT"
)

// 版式常量（EMU），对应默认 4:3 版式 10in x 7.5in
const (
	emuPerInch = 914400

	marginLeft   = int64(0.5 * emuPerInch)
	contentWidth = int64(9.0 * emuPerInch)

	// 图片与图表的固定位置：左 1in、上 1.5in、宽 6in，高度按原图比例
	pictureLeft  = int64(1.0 * emuPerInch)
	pictureTop   = int64(1.5 * emuPerInch)
	pictureWidth = int64(6.0 * emuPerInch)

	// 字号 (pt)
	fontTitle    = 44
	fontSubtitle = 20
	fontHeading  = 32
	fontBullet   = 24

	// 颜色 (ARGB)
	colorTitle   = "FF1F497D"
	colorContent = "FF4F81BD"
	colorBody    = "FF333333"

	// BulletPrefix 文本要点前缀
	BulletPrefix = "• "
)

// DeckAssets 导出过程中需要的文件读写
type DeckAssets interface {
	ReadFile(fullPath string) ([]byte, error)
	WriteChart(data []byte) (string, error)
}

// ChartRenderer 生成图表图片
type ChartRenderer interface {
	RenderSampleChart() ([]byte, error)
}

// DeckExporter 将标题和幻灯片序列转换为 pptx
type DeckExporter struct {
	Assets  DeckAssets
	Charts  ChartRenderer
	Creator string

	mu       sync.RWMutex
	subtitle string
}

// NewDeckExporter 创建导出器
func NewDeckExporter(assets DeckAssets, charts ChartRenderer, subtitle string) *DeckExporter {
	return &DeckExporter{
		Assets:   assets,
		Charts:   charts,
		Creator:  "SmartDeck",
		subtitle: subtitle,
	}
}

// Subtitle 标题页副标题
func (e *DeckExporter) Subtitle() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.subtitle
}

// SetSubtitle 修改之后导出的副标题
func (e *DeckExporter) SetSubtitle(subtitle string) {
	e.mu.Lock()
	e.subtitle = subtitle
	e.mu.Unlock()
}

// Export 生成演示文稿：一张标题页，之后每个描述生成一张幻灯片。
// 任何图片读取或写入失败都会中止导出并返回错误。
func (e *DeckExporter) Export(title string, slides []models.Slide) ([]byte, error) {
	p := ppt.New()
	p.GetDocumentProperties().Title = title
	p.GetDocumentProperties().Creator = e.Creator

	e.addTitleSlide(p.GetActiveSlide(), title, e.Subtitle())

	for i, s := range slides {
		slide := p.CreateSlide()

		var err error
		switch s.Type {
		case models.SlideTypeText:
			e.addTextSlide(slide, s)
		case models.SlideTypeImage:
			err = e.addImageSlide(slide, s)
		case models.SlideTypeChart:
			err = e.addChartSlide(slide, s)
		default:
			err = fmt.Errorf("未知的幻灯片类型: %q", s.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 张幻灯片: %w", i+1, err)
		}
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("failed to create PPT writer: %w", err)
	}
	pw, ok := w.(*ppt.PPTXWriter)
	if !ok {
		return nil, fmt.Errorf("unexpected PPT writer type %T", w)
	}

	var buf bytes.Buffer
	if err := pw.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to save PPT: %w", err)
	}

	return buf.Bytes(), nil
}

// addTitleSlide 标题页：粗体大标题加副标题
func (e *DeckExporter) addTitleSlide(slide *ppt.Slide, title, subtitle string) {
	titleShape := slide.CreateRichTextShape()
	titleShape.SetOffsetX(marginLeft).SetOffsetY(int64(2.3 * emuPerInch))
	titleShape.SetWidth(contentWidth).SetHeight(int64(1.5 * emuPerInch))
	tr := titleShape.CreateTextRun(title)
	tr.GetFont().SetSize(fontTitle).SetBold(true).SetColor(ppt.NewColor(colorTitle))
	alignCenter(titleShape.GetActiveParagraph())

	subShape := slide.CreateRichTextShape()
	subShape.SetOffsetX(marginLeft).SetOffsetY(int64(4.0 * emuPerInch))
	subShape.SetWidth(contentWidth).SetHeight(int64(0.8 * emuPerInch))
	sr := subShape.CreateTextRun(subtitle)
	sr.GetFont().SetSize(fontSubtitle).SetColor(ppt.NewColor(colorContent))
	alignCenter(subShape.GetActiveParagraph())
}

// addHeading 内容页顶部标题
func (e *DeckExporter) addHeading(slide *ppt.Slide, heading string) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(marginLeft).SetOffsetY(int64(0.3 * emuPerInch))
	shape.SetWidth(contentWidth).SetHeight(int64(1.0 * emuPerInch))
	tr := shape.CreateTextRun(heading)
	tr.GetFont().SetSize(fontHeading).SetBold(true).SetColor(ppt.NewColor(colorTitle))
}

// addTextSlide 每个要点一个段落，前缀 "• "
func (e *DeckExporter) addTextSlide(slide *ppt.Slide, s models.Slide) {
	e.addHeading(slide, s.Heading)

	body := slide.CreateRichTextShape()
	body.SetOffsetX(marginLeft).SetOffsetY(int64(1.5 * emuPerInch))
	body.SetWidth(contentWidth).SetHeight(int64(5.5 * emuPerInch))

	for i, point := range s.Points {
		if i > 0 {
			body.CreateParagraph()
		}
		tr := body.CreateTextRun(BulletPrefix + point)
		tr.GetFont().SetSize(fontBullet).SetColor(ppt.NewColor(colorBody))
	}
}

// addImageSlide 读取图片文件并放到固定位置
func (e *DeckExporter) addImageSlide(slide *ppt.Slide, s models.Slide) error {
	e.addHeading(slide, s.Heading)

	data, err := e.Assets.ReadFile(s.ImagePath)
	if err != nil {
		return fmt.Errorf("读取图片失败: %w", err)
	}

	return placePicture(slide, data)
}

// addChartSlide 生成示例柱状图，写入固定路径后嵌入
func (e *DeckExporter) addChartSlide(slide *ppt.Slide, s models.Slide) error {
	e.addHeading(slide, s.Heading)

	data, err := e.Charts.RenderSampleChart()
	if err != nil {
		return err
	}
	if _, err := e.Assets.WriteChart(data); err != nil {
		return fmt.Errorf("写入图表文件失败: %w", err)
	}

	return placePicture(slide, data)
}

// placePicture 固定位置和 6in 宽度，高度按原图比例
func placePicture(slide *ppt.Slide, data []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("无法识别的图片: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("图片尺寸无效: %dx%d", cfg.Width, cfg.Height)
	}

	imgShape := slide.CreateDrawingShape()
	imgShape.SetImageData(data, "image/"+format)
	imgShape.SetOffsetX(pictureLeft).SetOffsetY(pictureTop)
	imgShape.SetWidth(pictureWidth).SetHeight(pictureHeight(cfg.Width, cfg.Height))
	return nil
}

// pictureHeight 6in 宽时按比例得到的高度 (EMU)
func pictureHeight(pxWidth, pxHeight int) int64 {
	return pictureWidth * int64(pxHeight) / int64(pxWidth)
}

func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}
