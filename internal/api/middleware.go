// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Corphon/SmartDeck/internal/auth"
	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// 上下文键与 cookie 名
const (
	requestIDKey      = "request_id"
	sessionIDKey      = "session_id"
	sessionNewKey     = "session_created"
	sessionCookieName = "smartdeck_session"
	requestIDHeader   = "X-Request-ID"
)

// RateLimiter 固定窗口限流
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	now      func() time.Time
}

// Visitor 单个调用方在当前窗口内的配额
type Visitor struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// NewRateLimiter 创建限流器
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*Visitor),
		now:      time.Now,
	}
}

// Allow 检查 key 在当前窗口内是否还有配额，同时返回剩余配额和重置时间
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	visitor, exists := rl.visitors[key]

	if !exists || now.After(visitor.Reset) {
		// 清理过期条目，避免无限增长
		for k, v := range rl.visitors {
			if now.After(v.Reset) {
				delete(rl.visitors, k)
			}
		}
		visitor = &Visitor{Limit: limit, Remaining: limit, Reset: now.Add(window)}
		rl.visitors[key] = visitor
	}

	if visitor.Remaining <= 0 {
		return false, 0, visitor.Reset
	}
	visitor.Remaining--
	return true, visitor.Remaining, visitor.Reset
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(rl *RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, reset := rl.Allow(keyFunc(c), limit, window)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset.Unix()))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, &APIResponse{
				Success:   false,
				Error:     &APIError{Code: ErrorRateLimited, Message: "Rate limit exceeded"},
				Timestamp: time.Now(),
				RequestID: c.GetString(requestIDKey),
			})
			return
		}
		c.Next()
	}
}

// RateLimitBySession 按会话限流；本次请求才新建的会话按客户端 IP 计数
func RateLimitBySession(rl *RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimitMiddleware(rl, limit, window, func(c *gin.Context) string {
		if id := c.GetString(sessionIDKey); id != "" && !c.GetBool(sessionNewKey) {
			return "session:" + id
		}
		return "ip:" + c.ClientIP()
	})
}

// RequestIDMiddleware 为每个请求分配ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// SessionMiddleware 从签名 cookie 恢复会话，无效或过期时新建并下发 cookie。
// cookie 剩余有效期不足一半时重新签发。
func SessionMiddleware(signer *auth.SessionSigner, deck *services.DeckService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token *auth.SessionToken
		if raw, err := c.Cookie(sessionCookieName); err == nil && raw != "" {
			if t, err := signer.Verify(raw); err == nil {
				token = t
			}
		}

		sessionID := ""
		if token != nil {
			sessionID = token.SessionID
		}

		session, created := deck.OpenSession(sessionID)
		if created || signer.NeedsRefresh(token) {
			signed, err := signer.Sign(session.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, &APIResponse{
					Success:   false,
					Error:     &APIError{Code: ErrorInternalError, Message: "创建会话失败"},
					Timestamp: time.Now(),
					RequestID: c.GetString(requestIDKey),
				})
				return
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     sessionCookieName,
				Value:    signed,
				Path:     "/",
				MaxAge:   signer.MaxAge(),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(sessionIDKey, session.ID)
		c.Set(sessionNewKey, created)
		c.Next()
	}
}

// corsMiddleware 实现跨域资源共享
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
