package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"veilian/contexts/identity-access/access-control/application"
	"veilian/internal/shared/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Subscriber is the broker seam the gateway consumes channel topics through.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, events.Envelope) error) error
}

// Gateway upgrades WebSocket connections for channel delivery. Every
// connection presents a session grant token plus the channel it wants; the
// grant is re-validated before the broker subscription is hooked up, and
// revoking a handle's grants force-closes its open connections.
type Gateway struct {
	Access application.Service
	Bus    Subscriber
	Logger *slog.Logger

	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[string]map[*connection]struct{}
}

type connection struct {
	conn   *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc
	handle string
}

func NewGateway(access application.Service, bus Subscriber, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		Access: access,
		Bus:    bus,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[string]map[*connection]struct{}),
	}
}

// Handler serves GET /realtime?token=...&channel=... upgrade requests.
func (g *Gateway) Handler(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	channel := strings.TrimSpace(r.URL.Query().Get("channel"))
	if token == "" || channel == "" {
		http.Error(w, "token and channel query parameters are required", http.StatusBadRequest)
		return
	}

	grant, err := g.Access.ValidateGrant(r.Context(), token, channel)
	if err != nil {
		g.Logger.Warn("realtime subscription rejected",
			"event", "realtime_subscribe_rejected",
			"module", "internal/platform/realtime",
			"layer", "platform",
			"channel", channel,
			"error", err.Error(),
		)
		http.Error(w, "subscription not authorized", http.StatusForbidden)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.Logger.Error("websocket upgrade failed",
			"event", "realtime_upgrade_failed",
			"module", "internal/platform/realtime",
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &connection{
		conn:   ws,
		send:   make(chan []byte, sendBuffer),
		cancel: cancel,
		handle: grant.Handle,
	}
	g.track(c)

	if err := g.Bus.Subscribe(ctx, channel, "realtime:"+grant.Handle, func(_ context.Context, event events.Envelope) error {
		raw, err := json.Marshal(event)
		if err != nil {
			return err
		}
		select {
		case c.send <- raw:
		default:
			// Slow consumer: drop the connection rather than block the bus.
			cancel()
		}
		return nil
	}); err != nil {
		cancel()
		g.untrack(c)
		_ = ws.Close()
		return
	}

	g.Logger.Info("realtime connection opened",
		"event", "realtime_connection_opened",
		"module", "internal/platform/realtime",
		"layer", "platform",
		"handle", grant.Handle,
		"channel", channel,
	)

	go g.writePump(ctx, c)
	go g.readPump(ctx, c)
}

// DisconnectUser closes every open connection for a handle. The access
// module calls this synchronously while acknowledging a ban.
func (g *Gateway) DisconnectUser(ctx context.Context, handle string, reason string) {
	g.mu.Lock()
	conns := make([]*connection, 0, len(g.connections[handle]))
	for c := range g.connections[handle] {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	for _, c := range conns {
		c.cancel()
	}
	if len(conns) > 0 {
		g.Logger.Info("realtime connections force closed",
			"event", "realtime_connections_closed",
			"module", "internal/platform/realtime",
			"layer", "platform",
			"handle", handle,
			"reason", reason,
			"count", len(conns),
		)
	}
}

func (g *Gateway) track(c *connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.connections[c.handle] == nil {
		g.connections[c.handle] = make(map[*connection]struct{})
	}
	g.connections[c.handle][c] = struct{}{}
}

func (g *Gateway) untrack(c *connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections[c.handle], c)
	if len(g.connections[c.handle]) == 0 {
		delete(g.connections, c.handle)
	}
}

// readPump drains inbound frames to service pings and close handshakes.
// Clients publish through HTTP, never through the socket.
func (g *Gateway) readPump(ctx context.Context, c *connection) {
	defer func() {
		c.cancel()
		g.untrack(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) writePump(ctx context.Context, c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "grant revoked"))
			return
		case raw := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
