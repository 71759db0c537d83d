package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ppt "github.com/VantageDataChat/GoPPT"
)

// pngFixture 生成指定尺寸的 PNG
func pngFixture(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 144, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("生成 PNG 失败: %v", err)
	}
	return buf.Bytes()
}

// readDeck 把 pptx 写入临时文件再用 PPTXReader 读回
func readDeck(t *testing.T, data []byte) []*ppt.Slide {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.pptx")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("写入临时文件失败: %v", err)
	}

	reader := &ppt.PPTXReader{}
	pres, err := reader.Read(path)
	if err != nil {
		t.Fatalf("读取 pptx 失败: %v", err)
	}
	return pres.GetAllSlides()
}

// readDeckPictures 每张幻灯片上的图片形状
func readDeckPictures(t *testing.T, data []byte) [][]*ppt.DrawingShape {
	t.Helper()

	var out [][]*ppt.DrawingShape
	for _, slide := range readDeck(t, data) {
		var pics []*ppt.DrawingShape
		for _, shape := range slide.GetShapes() {
			if pic, ok := shape.(*ppt.DrawingShape); ok {
				pics = append(pics, pic)
			}
		}
		out = append(out, pics)
	}
	return out
}

// readDeckText 返回每张幻灯片的段落文本
func readDeckText(t *testing.T, data []byte) [][]string {
	t.Helper()

	var out [][]string
	for _, slide := range readDeck(t, data) {
		var lines []string
		for _, shape := range slide.GetShapes() {
			rts, ok := shape.(*ppt.RichTextShape)
			if !ok {
				continue
			}
			for _, para := range rts.GetParagraphs() {
				var text string
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						text += run.GetText()
					}
				}
				if text = strings.TrimSpace(text); text != "" {
					lines = append(lines, text)
				}
			}
		}
		out = append(out, lines)
	}
	return out
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
