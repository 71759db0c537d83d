// internal/services/session_service.go
package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session 一个浏览器会话的状态
type Session struct {
	ID        string
	Registry  *SlideRegistry
	CreatedAt time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed 最后访问时间
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// SessionService 管理内存中的会话，空闲超过 TTL 的会话会被清理
type SessionService struct {
	sessions     map[string]*Session
	mutex        sync.RWMutex
	ttl          time.Duration
	defaultTitle string
	onExpire     func(sessionID string)
	now          func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSessionService 创建会话服务；onExpire 在会话被清理后调用，可为 nil
func NewSessionService(ttl time.Duration, defaultTitle string, onExpire func(sessionID string)) *SessionService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionService{
		sessions:     make(map[string]*Session),
		ttl:          ttl,
		defaultTitle: defaultTitle,
		onExpire:     onExpire,
		now:          time.Now,
		stop:         make(chan struct{}),
	}
}

// OnExpire 设置会话清理后的回调
func (s *SessionService) OnExpire(fn func(sessionID string)) {
	s.mutex.Lock()
	s.onExpire = fn
	s.mutex.Unlock()
}

// SetDefaultTitle 修改新会话的默认标题，已有会话不受影响
func (s *SessionService) SetDefaultTitle(title string) {
	s.mutex.Lock()
	s.defaultTitle = title
	s.mutex.Unlock()
}

// Create 创建新会话
func (s *SessionService) Create() *Session {
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	session := &Session{
		ID:        uuid.NewString(),
		Registry:  NewSlideRegistry(s.defaultTitle),
		CreatedAt: now,
		lastUsed:  now,
	}
	s.sessions[session.ID] = session
	return session
}

// Get 获取会话并刷新访问时间
func (s *SessionService) Get(id string) (*Session, bool) {
	s.mutex.RLock()
	session, exists := s.sessions[id]
	s.mutex.RUnlock()

	if !exists {
		return nil, false
	}
	session.touch(s.now())
	return session, true
}

// GetOrCreate 会话不存在（或已过期被清理）时创建新会话
func (s *SessionService) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if session, ok := s.Get(id); ok {
			return session, false
		}
	}
	return s.Create(), true
}

// Count 当前会话数
func (s *SessionService) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}

// StartCleanup 定期清理过期会话，直到 Stop 被调用
func (s *SessionService) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanupExpired()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop 停止后台清理
func (s *SessionService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// CleanupExpired 删除空闲超过 TTL 的会话，返回删除数量
func (s *SessionService) CleanupExpired() int {
	now := s.now()

	s.mutex.Lock()
	var expired []string
	for id, session := range s.sessions {
		if now.Sub(session.LastUsed()) > s.ttl {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	onExpire := s.onExpire
	s.mutex.Unlock()

	if onExpire != nil {
		for _, id := range expired {
			onExpire(id)
		}
	}
	return len(expired)
}
