package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/edu_go_server/internal/pkg/pubsub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newTestServer 每个连接按 userFor 分配用户并注册到 hub
func newTestServer(t *testing.T, hub *Hub, userFor func() int64) string {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{UserID: userFor(), Conn: conn}
		hub.Register(client)

		go func() {
			defer hub.Unregister(client)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.Equal(t, 0, hub.ConnectionCount())
	assert.Equal(t, 0, hub.Connections(123))
}

func TestHub_Deliver_NobodyListening(t *testing.T) {
	hub := NewHub()

	assert.Equal(t, 0, hub.push(&pubsub.Event{Type: pubsub.EventQuizGraded, UserID: 123}))
	assert.NotPanics(t, func() { hub.Deliver(&pubsub.Event{Type: pubsub.EventQuizGraded}) })
}

func TestHub_UnregisterTwice(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: 5}

	hub.Register(client)
	assert.Equal(t, 1, hub.Connections(5))

	hub.Unregister(client)
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_Deliver(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, func() int64 { return 200 })

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Connections(200) == 1 }, time.Second, 10*time.Millisecond)

	hub.Deliver(&pubsub.Event{
		Type:         pubsub.EventQuizGraded,
		UserID:       200,
		Score:        67,
		PointsEarned: 20,
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, received, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(received), `"type":"quiz_graded"`)
	assert.Contains(t, string(received), `"data":{"type":"quiz_graded","user_id":200`)
	assert.Contains(t, string(received), `"points_earned":20`)
}

func TestHub_Deliver_IgnoresOtherUsers(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, func() int64 { return 300 })

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Connections(300) == 1 }, time.Second, 10*time.Millisecond)

	hub.Deliver(&pubsub.Event{Type: pubsub.EventQuizGraded, UserID: 301})
	hub.Deliver(nil)

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no message expected for another user")
}

func TestHub_MultipleConnectionsPerUser(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, func() int64 { return 400 })

	conn1 := dial(t, url)
	conn2 := dial(t, url)
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 2 }, time.Second, 10*time.Millisecond)

	delivered := hub.push(&pubsub.Event{Type: pubsub.EventSubscriptionActivated, UserID: 400, PlanType: "YEARLY"})
	assert.Equal(t, 2, delivered)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, received, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(received), `"plan_type":"YEARLY"`)
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub()
	var next int64
	url := newTestServer(t, hub, func() int64 { return atomic.AddInt64(&next, 1) })

	conns := []*websocket.Conn{dial(t, url), dial(t, url), dial(t, url)}
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 3 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Connections(4))

	conns[0].Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub, func() int64 { return 300 })

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Connections(300) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), &pubsub.Event{
		Type:      pubsub.EventChapterCompleted,
		UserID:    300,
		ChapterID: 9,
	}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, received, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(received), `"type":"chapter_completed"`)
}
