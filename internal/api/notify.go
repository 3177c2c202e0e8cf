package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// Notification kinds pushed by the backend over /ws. The payload carries no
// timer data: a notification only tells the client to refetch, so a lost or
// coalesced event can never make the display wrong, just momentarily stale.
const (
	notifyTimerChanged = "timer_changed"
	notifyHello        = "hello"
)

// notifyEnvelope is the wire shape of a push notification.
type notifyEnvelope struct {
	Type string `json:"type"`
}

// NotifyClient maintains the WebSocket change-notification channel to the
// backend. It exists to cut poll latency, not to carry state: the HTTP poll
// remains the only source of truth.
type NotifyClient struct {
	url   string
	token string

	mu      sync.Mutex
	writeMu sync.Mutex // serialises all conn writes (ping, auth)
	conn    *websocket.Conn
	pingCtx context.CancelFunc // cancels the active ping goroutine
}

// NewNotifyClient creates a client that connects to the given WebSocket URL.
func NewNotifyClient(url, token string) *NotifyClient {
	return &NotifyClient{url: url, token: token}
}

// --- Bubble Tea messages ---

// NotifyConnectedMsg is sent when the notification channel connects. The app
// treats it as the "network restored" trigger and refetches immediately.
type NotifyConnectedMsg struct{}

// NotifyDisconnectedMsg is sent when the connection drops.
type NotifyDisconnectedMsg struct{ Err error }

// TimerChangedMsg is sent when the backend reports the timer session changed.
type TimerChangedMsg struct{}

// Listen returns a Bubble Tea command that connects and reports the result.
// It retries with backoff until connected or the context is cancelled.
func (c *NotifyClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
			if err != nil {
				log.Printf("notify dial error: %v (retry in %v)", err, delay)
				time.Sleep(delay)
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}

			// Authenticate if a token is set. No write mutex needed here
			// because the connection isn't shared yet.
			if c.token != "" {
				auth := map[string]string{"type": "auth", "token": c.token}
				if err := conn.WriteJSON(auth); err != nil {
					conn.Close()
					continue
				}
			}

			c.mu.Lock()
			if c.pingCtx != nil {
				c.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			c.conn = conn
			c.pingCtx = pingCancel
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)

			return NotifyConnectedMsg{}
		}
	}
}

// ReadLoop returns a Bubble Tea command that reads the next notification.
// It should be re-issued after every message it delivers.
func (c *NotifyClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return NotifyDisconnectedMsg{Err: fmt.Errorf("no connection")}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				if c.conn == conn {
					c.conn = nil
				}
				c.mu.Unlock()
				conn.Close()
				return NotifyDisconnectedMsg{Err: err}
			}

			var env notifyEnvelope
			if err := json.Unmarshal(data, &env); err != nil {
				continue
			}
			if env.Type == notifyTimerChanged {
				return TimerChangedMsg{}
			}
		}
	}
}

// Close tears down the current connection, if any.
func (c *NotifyClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pingCtx != nil {
		c.pingCtx()
		c.pingCtx = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// pingLoop sends periodic pings on the given connection. It exits when the
// context is cancelled or the connection changes.
func (c *NotifyClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
