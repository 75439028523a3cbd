package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"stockchart/internal/chart"
	"stockchart/internal/metrics"
	"stockchart/internal/session"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// hub tracks open websocket clients so shutdown can close them.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newHub(m *metrics.Metrics, logger *zap.Logger) *hub {
	return &hub{
		clients: make(map[*wsClient]struct{}),
		metrics: m,
		logger:  logger,
	}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.WSClients.Set(float64(n))
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.WSClients.Set(float64(n))
}

func (h *hub) closeAll() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// wsClient pushes chart payloads for one session to one browser tab.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}

// push queues a payload, dropping it if the client is slow or gone. A later
// push carries the full state, so nothing is lost but intermediate frames.
func (c *wsClient) push(v session.View) {
	msg, err := json.Marshal(chart.FromView(v))
	if err != nil {
		c.logger.Error("marshal view", zap.Error(err))
		return
	}
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Debug("ws send buffer full, dropping frame", zap.Uint64("version", v.Version))
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump only watches for the peer going away; clients never send data.
func (c *wsClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(512)
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

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	// carries Set-Cookie for a session created by this request
	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		s.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	c := &wsClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: s.logger.With(zap.String("session", sess.ID())),
	}
	s.hub.add(c)
	cancel := sess.Subscribe(c.push)
	c.push(sess.View())

	go c.writePump()
	c.readPump()

	cancel()
	s.hub.remove(c)
	c.logger.Debug("ws client disconnected")
}
