// internal/models/event.go
package models

import "time"

// 推送给预览页的事件类型
const (
	EventConnected     = "connected"
	EventSlideAdded    = "slide_added"
	EventTitleChanged  = "title_changed"
	EventDeckGenerated = "deck_generated"
)

// DeckEvent 会话内的状态变化事件
type DeckEvent struct {
	Type      string      `json:"type"`
	SessionID string      `json:"-"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewDeckEvent 创建事件
func NewDeckEvent(eventType, sessionID string, data interface{}) DeckEvent {
	return DeckEvent{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
