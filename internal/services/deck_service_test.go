package services

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Corphon/SmartDeck/internal/errors"
	"github.com/Corphon/SmartDeck/internal/models"
	"github.com/Corphon/SmartDeck/internal/storage"
	"github.com/Corphon/SmartDeck/internal/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.DeckEvent
}

func (p *recordingPublisher) PublishDeckEvent(e models.DeckEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newTestDeckService(t *testing.T) (*DeckService, *recordingPublisher, *utils.MetricsCollector) {
	t.Helper()

	fs, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("创建存储失败: %v", err)
	}
	charts := NewChartService()
	svc := NewDeckService(
		NewSessionService(time.Hour, "My Presentation", nil),
		fs,
		NewDeckExporter(fs, charts, "Auto-Generated Smart Presentation"),
		charts,
	)

	metrics := utils.NewMetricsCollector()
	svc.SetMetrics(metrics)
	pub := &recordingPublisher{}
	svc.SetPublisher(pub)
	return svc, pub, metrics
}

func TestDeckServiceAddAndPreview(t *testing.T) {
	svc, pub, metrics := newTestDeckService(t)
	session, _ := svc.OpenSession("")

	if _, err := svc.AddTextSlide(session.ID, "Intro", "hello\r\nworld"); err != nil {
		t.Fatalf("添加文本幻灯片失败: %v", err)
	}
	if _, err := svc.AddImageSlide(session.ID, "Pic", "photo.png", bytes.NewReader(pngFixture(t, 8, 8))); err != nil {
		t.Fatalf("添加图片幻灯片失败: %v", err)
	}
	chart, err := svc.AddChartSlide(session.ID, "Numbers")
	if err != nil {
		t.Fatalf("添加图表幻灯片失败: %v", err)
	}
	if chart.Number != 3 || chart.ChartURL != ChartPreviewURL {
		t.Fatalf("图表预览错误: %+v", chart)
	}

	preview, err := svc.Preview(session.ID)
	if err != nil {
		t.Fatalf("预览失败: %v", err)
	}
	if preview.Title != "My Presentation" || len(preview.Slides) != 3 {
		t.Fatalf("预览错误: %+v", preview)
	}
	text := preview.Slides[0]
	if text.Label != "Text" || len(text.Points) != 2 || text.Points[1] != "world" {
		t.Fatalf("文本预览错误: %+v", text)
	}
	if preview.Slides[1].ImageURL != "/api/deck/images/1" {
		t.Fatalf("图片地址错误: %q", preview.Slides[1].ImageURL)
	}

	if got := metrics.GetCounterValue(utils.MetricSlidesAdded); got != 3 {
		t.Fatalf("slides_added = %d，期望 3", got)
	}
	if got := len(pub.types()); got != 3 {
		t.Fatalf("事件数 = %d，期望 3", got)
	}

	data, mime, err := svc.ImageFile(session.ID, 1)
	if err != nil || mime != "image/png" || len(data) == 0 {
		t.Fatalf("读取图片失败: %v %s", err, mime)
	}
	if _, _, err := svc.ImageFile(session.ID, 0); !errors.IsNotFoundError(err) {
		t.Fatalf("文本幻灯片没有图片，应返回未找到: %v", err)
	}
}

func TestDeckServiceImageRequiresUpload(t *testing.T) {
	svc, _, _ := newTestDeckService(t)
	session, _ := svc.OpenSession("")

	if _, err := svc.AddImageSlide(session.ID, "Pic", "", nil); !errors.IsValidationError(err) {
		t.Fatalf("未上传图片应返回验证错误: %v", err)
	}
	if _, err := svc.AddImageSlide(session.ID, "Pic", "doc.gif", bytes.NewReader([]byte("GIF89a"))); !errors.IsValidationError(err) {
		t.Fatalf("不支持的格式应返回验证错误: %v", err)
	}
	if session.Registry.Len() != 0 {
		t.Fatal("失败的上传不应添加幻灯片")
	}
}

func TestDeckServiceUnknownSession(t *testing.T) {
	svc, _, _ := newTestDeckService(t)

	if _, err := svc.AddChartSlide("nope", "x"); !errors.IsNotFoundError(err) {
		t.Fatalf("未知会话应返回未找到: %v", err)
	}
	if _, err := svc.Generate("nope", ""); !errors.IsNotFoundError(err) {
		t.Fatalf("未知会话应返回未找到: %v", err)
	}
}

func TestDeckServiceGenerate(t *testing.T) {
	svc, pub, metrics := newTestDeckService(t)
	session, _ := svc.OpenSession("")

	svc.AddTextSlide(session.ID, "A", "p1\np2")
	svc.AddChartSlide(session.ID, "B")

	result, err := svc.Generate(session.ID, "Quarterly")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if result.SlideCount != 3 || result.FileName != models.DefaultExportFileName {
		t.Fatalf("结果错误: %+v", result)
	}
	if result.Title != "Quarterly" || session.Registry.Title() != "Quarterly" {
		t.Fatal("生成时应使用新标题")
	}
	if result.FileSize != int64(len(result.Data)) || result.FileSize == 0 {
		t.Fatalf("文件大小错误: %d", result.FileSize)
	}

	slides := readDeckText(t, result.Data)
	if len(slides) != 3 || !containsLine(slides[0], "Quarterly") {
		t.Fatalf("导出内容错误: %v", slides)
	}

	if metrics.GetCounterValue(utils.MetricDecksGenerated) != 1 {
		t.Fatal("decks_generated 应为 1")
	}
	types := pub.types()
	if types[len(types)-1] != models.EventDeckGenerated {
		t.Fatalf("最后一个事件应为 deck_generated: %v", types)
	}
}

func TestDeckServiceGenerateMissingImage(t *testing.T) {
	svc, _, metrics := newTestDeckService(t)
	session, _ := svc.OpenSession("")

	preview, err := svc.AddImageSlide(session.ID, "Pic", "photo.png", bytes.NewReader(pngFixture(t, 4, 4)))
	if err != nil {
		t.Fatalf("添加图片幻灯片失败: %v", err)
	}
	slide, _ := session.Registry.At(preview.Index)
	if err := os.Remove(slide.ImagePath); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Generate(session.ID, ""); err == nil {
		t.Fatal("图片文件缺失时生成应失败")
	}
	if metrics.GetCounterValue(utils.MetricExportFailures) != 1 {
		t.Fatal("export_failures 应为 1")
	}
}

func TestDeckServiceExpireSessionRemovesUploads(t *testing.T) {
	svc, _, _ := newTestDeckService(t)
	session, _ := svc.OpenSession("")

	preview, err := svc.AddImageSlide(session.ID, "Pic", "photo.png", bytes.NewReader(pngFixture(t, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	slide, _ := session.Registry.At(preview.Index)

	svc.ExpireSession(session.ID)

	if _, err := os.Stat(slide.ImagePath); !os.IsNotExist(err) {
		t.Fatalf("过期会话的上传文件应被删除: %v", err)
	}
}
