// internal/services/slide_registry.go
package services

import (
	"sync"

	"github.com/Corphon/SmartDeck/internal/models"
)

// SlideRegistry 单个会话的幻灯片序列，只追加，不重排、不删除
type SlideRegistry struct {
	mu     sync.RWMutex
	title  string
	slides []models.Slide
}

// NewSlideRegistry 创建注册表
func NewSlideRegistry(title string) *SlideRegistry {
	return &SlideRegistry{title: title}
}

// Append 追加幻灯片，返回其位置
func (r *SlideRegistry) Append(slide models.Slide) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slides = append(r.slides, slide.Clone())
	return len(r.slides) - 1
}

// Slides 按插入顺序返回副本
func (r *SlideRegistry) Slides() []models.Slide {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Slide, len(r.slides))
	for i, s := range r.slides {
		out[i] = s.Clone()
	}
	return out
}

// At 返回指定位置的幻灯片
func (r *SlideRegistry) At(index int) (models.Slide, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.slides) {
		return models.Slide{}, false
	}
	return r.slides[index].Clone(), true
}

// Len 幻灯片数量
func (r *SlideRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slides)
}

// Title 演示文稿标题
func (r *SlideRegistry) Title() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.title
}

// SetTitle 设置演示文稿标题
func (r *SlideRegistry) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
}

// Snapshot 返回当前标题和幻灯片的一致快照
func (r *SlideRegistry) Snapshot() models.Deck {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deck := models.Deck{Title: r.title, Slides: make([]models.Slide, len(r.slides))}
	for i, s := range r.slides {
		deck.Slides[i] = s.Clone()
	}
	return deck
}
