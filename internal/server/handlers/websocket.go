// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// WebSocketClient represents a connected map client. The send channel is
// never closed; teardown closes done instead, so late publishers can always
// select against it safely.
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	done              chan struct{}
	natsConn          *nats.Conn
	natsSubscriptions []*nats.Subscription
	closeOnce         sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// MapWebSocketHandler streams live map events to connected clients: souffle
// creations, reveals, reports, clears and ticket activity, as published on
// the event bus.
func MapWebSocketHandler(natsConn *nats.Conn, topics ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:     conn,
			send:     make(chan []byte, 256),
			done:     make(chan struct{}),
			natsConn: natsConn,
		}

		// Queue the welcome before the pumps start so it goes out first,
		// whatever the peer does next.
		welcomeMsg := map[string]interface{}{
			"type": "welcome",
			"time": time.Now(),
		}
		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.send <- welcomeJSON

		go client.writePump()
		go client.readPump()

		if err := client.subscribe(topics); err != nil {
			log.Printf("Failed to subscribe to map topics: %v", err)
			client.closeConnection()
			return
		}
	}
}

// readPump drains the connection. Map clients are read-only; incoming
// frames only serve the pong handler that keeps the connection alive.
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps bus events to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// subscribe wires the client to each wildcard event topic.
func (c *WebSocketClient) subscribe(topics []string) error {
	for _, topic := range topics {
		sub, err := c.natsConn.Subscribe(topic, func(msg *nats.Msg) {
			envelope := map[string]interface{}{
				"topic": msg.Subject,
				"data":  json.RawMessage(msg.Data),
				"time":  time.Now(),
			}
			data, err := json.Marshal(envelope)
			if err != nil {
				return
			}
			select {
			case c.send <- data:
			case <-c.done:
				// Client already torn down.
			default:
				// Slow client; drop the event rather than block the bus.
			}
		})
		if err != nil {
			return err
		}
		c.natsSubscriptions = append(c.natsSubscriptions, sub)
	}

	return nil
}

// closeConnection closes the WebSocket connection and cleans up resources.
// Both pumps call it on exit; it runs once. The send channel is left open
// and garbage-collected with the client.
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()
		close(c.done)
	})
}
