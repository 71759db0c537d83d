// internal/api/websocket.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Corphon/SmartDeck/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsSendBuffer = 64
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// deckClient 一个打开的预览页连接
type deckClient struct {
	hub       *DeckHub
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

type deckMessage struct {
	sessionID string
	payload   []byte
}

// DeckHub 按会话分组的 WebSocket 连接，单协程处理注册、注销和广播
type DeckHub struct {
	connections map[string]map[*deckClient]bool // sessionID -> clients
	broadcast   chan deckMessage
	register    chan *deckClient
	unregister  chan *deckClient
	done        chan struct{}
	stopOnce    sync.Once

	mutex sync.RWMutex
}

// NewDeckHub 创建并启动 hub
func NewDeckHub() *DeckHub {
	h := &DeckHub{
		connections: make(map[string]map[*deckClient]bool),
		broadcast:   make(chan deckMessage, 256),
		register:    make(chan *deckClient, 64),
		unregister:  make(chan *deckClient, 64),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

// run 主循环
func (h *DeckHub) run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

func (h *DeckHub) registerClient(client *deckClient) {
	h.mutex.Lock()
	if h.connections[client.sessionID] == nil {
		h.connections[client.sessionID] = make(map[*deckClient]bool)
	}
	h.connections[client.sessionID][client] = true
	h.mutex.Unlock()

	welcome, _ := json.Marshal(models.NewDeckEvent(models.EventConnected, client.sessionID, nil))
	client.trySend(welcome)
}

func (h *DeckHub) unregisterClient(client *deckClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.connections[client.sessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.connections, client.sessionID)
	}
	close(client.send)
}

// deliver 发给同一会话的所有连接；队列已满的连接被断开
func (h *DeckHub) deliver(msg deckMessage) {
	h.mutex.RLock()
	var stalled []*deckClient
	for client := range h.connections[msg.sessionID] {
		if !client.trySend(msg.payload) {
			stalled = append(stalled, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stalled {
		log.Printf("⚠️ 会话 %s 的预览连接消息队列已满，断开连接", client.sessionID)
		h.unregisterClient(client)
	}
}

func (h *DeckHub) shutdown() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, clients := range h.connections {
		for client := range clients {
			close(client.send)
		}
	}
	h.connections = make(map[string]map[*deckClient]bool)
}

// Stop 关闭所有连接并停止主循环
func (h *DeckHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// PublishDeckEvent 推送会话事件
func (h *DeckHub) PublishDeckEvent(event models.DeckEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ 序列化事件失败: %v", err)
		return
	}

	select {
	case h.broadcast <- deckMessage{sessionID: event.SessionID, payload: payload}:
	case <-h.done:
	default:
		log.Printf("⚠️ 广播队列已满，事件 %s 被丢弃", event.Type)
	}
}

// Status 所有会话的连接数
func (h *DeckHub) Status() map[string]interface{} {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	total := 0
	for _, clients := range h.connections {
		total += len(clients)
	}
	return map[string]interface{}{
		"sessions":    len(h.connections),
		"connections": total,
	}
}

// ServeSession 升级连接并挂到当前会话
func (h *DeckHub) ServeSession(c *gin.Context) {
	sessionID := c.GetString(sessionIDKey)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ 预览 WebSocket 升级失败: %v", err)
		return
	}

	client := &deckClient{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, wsSendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// trySend 非阻塞写入发送队列，只在 hub 协程中调用
func (c *deckClient) trySend(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// readPump 只处理 pong 和关闭，页面不会发送业务消息
func (c *deckClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket 读取错误: %v", err)
			}
			return
		}
	}
}

func (c *deckClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("❌ WebSocket 写入失败: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
