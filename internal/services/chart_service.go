// internal/services/chart_service.go
package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SampleChartTitle 示例图表标题
const SampleChartTitle = "Sample Chart"

// ChartBar 示例数据中的一根柱
type ChartBar struct {
	Category string
	Value    float64
	Color    drawing.Color
}

// SampleChartData 固定示例数据集
var SampleChartData = []ChartBar{
	{Category: "A", Value: 20, Color: drawing.ColorRed},
	{Category: "B", Value: 35, Color: drawing.ColorBlue},
	{Category: "C", Value: 50, Color: drawing.ColorGreen},
}

// ChartService 渲染柱状图
type ChartService struct {
	Width  int
	Height int
}

// NewChartService 创建图表服务，尺寸 640x480 对应 6in 宽的图片位
func NewChartService() *ChartService {
	return &ChartService{Width: 640, Height: 480}
}

// RenderSampleChart 将示例数据渲染为 PNG
func (s *ChartService) RenderSampleChart() ([]byte, error) {
	return s.RenderBarChart(SampleChartTitle, SampleChartData)
}

// WriteSampleChart 渲染示例图表并写入 path（覆盖已有文件）
func (s *ChartService) WriteSampleChart(path string) error {
	data, err := s.RenderSampleChart()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// RenderBarChart 渲染柱状图为 PNG
func (s *ChartService) RenderBarChart(title string, bars []ChartBar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("图表数据为空")
	}

	values := make([]chart.Value, 0, len(bars))
	for _, b := range bars {
		values = append(values, chart.Value{
			Label: b.Category,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   b.Color,
				StrokeColor: b.Color,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  s.Width,
		Height: s.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth: s.Width / (len(bars) * 2),
		Bars:     values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("渲染图表失败: %w", err)
	}

	return buf.Bytes(), nil
}
