package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Diker777/predictive-maintenance-system/internal/metrics"
	"github.com/Diker777/predictive-maintenance-system/internal/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 16
)

type envelope struct {
	Channel string         `json:"channel"`
	Alerts  []models.Alert `json:"alerts"`
}

// Client is one connected alert subscriber. Its send channel is buffered;
// when the buffer is full the hub drops the client instead of waiting.
type Client struct {
	send chan []byte
}

// Hub fans newly created alerts out to all connected subscribers. Delivery
// is at most once per subscriber per publish: there is no backlog, no
// retry, and a subscriber that connects later simply misses earlier alerts.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register() *Client {
	c := &Client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SubscribersConnected.Set(float64(n))
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SubscribersConnected.Set(float64(n))
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends the alert batch to every connected subscriber without
// blocking. A subscriber whose buffer is full is dropped so it cannot stall
// the ingestion path.
func (h *Hub) Publish(alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}
	msg, err := json.Marshal(envelope{Channel: "alerts", Alerts: alerts})
	if err != nil {
		slog.Error("Failed to marshal alert broadcast", "error", err)
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			metrics.BroadcastsDropped.Inc()
			slog.Warn("Dropped slow alert subscriber")
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SubscribersConnected.Set(float64(n))
}

// UpgradeCheck is middleware that rejects plain HTTP requests on the
// websocket route.
func UpgradeCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler serves one subscriber connection: it registers the client, pumps
// published batches to the socket and pings the peer until either side
// closes.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := h.Register()
		defer h.Unregister(client)

		// Subscribers never send application messages; the read loop only
		// detects disconnects.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-client.send:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}
