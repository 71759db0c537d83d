// cmd/deckctl/deckfile.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Corphon/SmartDeck/internal/models"
	"gopkg.in/yaml.v3"
)

// deckFile YAML 文件格式
//
//	title: Quarterly Review
//	subtitle: Team A
//	slides:
//	  - type: text
//	    heading: Agenda
//	    content: |
//	      Intro
//	      Numbers
//	  - type: image
//	    heading: Office
//	    image: photos/office.png
//	  - type: chart
//	    heading: Sales
type deckFile struct {
	Title    string       `yaml:"title"`
	Subtitle *string      `yaml:"subtitle"`
	Slides   []slideEntry `yaml:"slides"`
}

type slideEntry struct {
	Type    string   `yaml:"type"`
	Heading string   `yaml:"heading"`
	Content string   `yaml:"content"`
	Points  []string `yaml:"points"`
	Image   string   `yaml:"image"`
}

// loadDeckFile 读取并校验 YAML，图片路径相对于 YAML 文件所在目录
func loadDeckFile(path string) (*deckFile, *models.Deck, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("读取文件失败: %w", err)
	}

	var df deckFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}

	deck := &models.Deck{Title: df.Title, Slides: make([]models.Slide, 0, len(df.Slides))}
	baseDir := filepath.Dir(path)

	for i, entry := range df.Slides {
		slide, err := entry.toSlide(baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("slides[%d]: %w", i, err)
		}
		deck.Slides = append(deck.Slides, slide)
	}
	return &df, deck, nil
}

func (s slideEntry) toSlide(baseDir string) (models.Slide, error) {
	slideType, ok := models.ParseSlideType(s.Type)
	if !ok {
		return models.Slide{}, fmt.Errorf("不支持的幻灯片类型: %q", s.Type)
	}

	switch slideType {
	case models.SlideTypeText:
		if len(s.Points) > 0 {
			return models.Slide{Type: slideType, Heading: s.Heading, Points: s.Points}, nil
		}
		return models.NewTextSlide(s.Heading, s.Content), nil
	case models.SlideTypeImage:
		if s.Image == "" {
			return models.Slide{}, fmt.Errorf("图片幻灯片缺少 image 字段")
		}
		imagePath := s.Image
		if !filepath.IsAbs(imagePath) {
			imagePath = filepath.Join(baseDir, imagePath)
		}
		return models.NewImageSlide(s.Heading, imagePath), nil
	default:
		return models.NewChartSlide(s.Heading), nil
	}
}
