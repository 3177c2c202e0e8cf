package devserver

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 16),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Notifier fans change notifications out to connected WebSocket clients.
// Payloads carry no timer data, only a hint to refetch.
type Notifier struct {
	mu      sync.Mutex
	clients map[*client]bool
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{clients: make(map[*client]bool)}
}

// AddClient registers a connection and greets it.
func (n *Notifier) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)
	n.mu.Lock()
	n.clients[c] = true
	n.mu.Unlock()

	data, _ := json.Marshal(map[string]string{"type": "hello"})
	select {
	case c.send <- data:
	default:
	}
	return c
}

// RemoveClient unregisters a connection.
func (n *Notifier) RemoveClient(c *client) {
	n.mu.Lock()
	if _, ok := n.clients[c]; ok {
		delete(n.clients, c)
		c.close()
	}
	n.mu.Unlock()
}

// TimerChanged tells every client the current timer session changed.
func (n *Notifier) TimerChanged() {
	data, _ := json.Marshal(map[string]string{"type": "timer_changed"})
	n.mu.Lock()
	defer n.mu.Unlock()
	for c := range n.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, drop the notification. The poll schedule
			// covers the loss.
		}
	}
}
