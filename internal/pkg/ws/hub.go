package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
)

const writeWait = 10 * time.Second

// Hub 按用户维护学习事件推送连接
type Hub struct {
	// 同一用户可能同时打开多个页面
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	mu     sync.Mutex // 串行写
}

// envelope 推送给前端的消息格式
type envelope struct {
	Type string        `json:"type"`
	Data *pubsub.Event `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	conns := h.clients[client.UserID]
	if conns == nil {
		conns = make(map[*Client]struct{})
		h.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	n := len(conns)
	h.mu.Unlock()

	log.Printf("Learner %d subscribed to events (%d connections)", client.UserID, n)
}

// Unregister 移除连接，重复调用无副作用
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	conns, ok := h.clients[client.UserID]
	if ok {
		if _, found := conns[client]; !found {
			ok = false
		}
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mu.Unlock()

	if ok {
		log.Printf("Learner %d unsubscribed from events", client.UserID)
	}
}

// Deliver 将学习事件推送给事件所属用户的全部连接
func (h *Hub) Deliver(ev *pubsub.Event) {
	if ev == nil || ev.UserID == 0 {
		return
	}
	h.push(ev)
}

// Publish 单实例部署（无 Redis）时直接在本进程内投递
func (h *Hub) Publish(ctx context.Context, ev *pubsub.Event) error {
	h.Deliver(ev)
	return nil
}

// push 返回成功写入的连接数，写失败的连接被移除
func (h *Hub) push(ev *pubsub.Event) int {
	data, err := json.Marshal(envelope{Type: ev.Type, Data: ev})
	if err != nil {
		log.Printf("Encode %s event failed: %v", ev.Type, err)
		return 0
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[ev.UserID]))
	for c := range h.clients[ev.UserID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			log.Printf("Push %s to learner %d failed: %v", ev.Type, ev.UserID, err)
			h.Unregister(c)
			c.Conn.Close()
			continue
		}
		delivered++
	}
	return delivered
}

func (c *Client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Connections 某个用户当前的连接数
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ConnectionCount 全部在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
