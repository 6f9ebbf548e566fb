package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/game"
	"github.com/alexbotov/casino/internal/session"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSClient represents a WebSocket client connection
type WSClient struct {
	conn    *websocket.Conn
	send    chan []byte
	session *session.Session

	mu     sync.Mutex
	closed bool
}

func (c *WSClient) enqueue(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Channel full, drop message
	}
}

func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// hub fans round events out to every socket open on a session.
type hub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *hub) add(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.session.ID]
	if !ok {
		set = make(map[*WSClient]struct{})
		h.clients[c.session.ID] = set
	}
	set[c] = struct{}{}
}

func (h *hub) remove(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.session.ID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.session.ID)
	}
}

func (h *hub) broadcast(sessionID, msgType string, payload interface{}) {
	msg, err := encodeMessage(msgType, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[sessionID] {
		c.enqueue(msg)
	}
}

// publish pushes what a round produced: the round itself, the new balance
// and any milestone or goal it triggered.
func (h *hub) publish(sessionID string, res *game.PlayResult) {
	h.broadcast(sessionID, "round", res)
	h.broadcast(sessionID, "balance", map[string]interface{}{
		"balance": res.Balance,
	})
	for _, m := range res.Progress.Milestones {
		h.broadcast(sessionID, "milestone", m)
	}
	if res.Progress.GoalJustReached {
		h.broadcast(sessionID, "goal", map[string]interface{}{
			"balance": res.Balance,
		})
	}
}

func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, Payload: payloadBytes})
}

// HandleWebSocket handles GET /ws
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &WSClient{
		conn:    conn,
		send:    make(chan []byte, 256),
		session: sess,
	}
	h.hub.add(client)

	go client.writePump()
	go h.readPump(client)
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the handler
func (h *Handler) readPump(c *WSClient) {
	defer func() {
		h.hub.remove(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	h.sendMessage(c, "connected", c.session.State())

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket closed", zap.String("session_id", c.session.ID), zap.Error(err))
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.sendError(c, "INVALID_MESSAGE", "Invalid message format")
			continue
		}
		h.handleWSMessage(c, &msg)
	}
}

// handleWSMessage processes incoming WebSocket messages
func (h *Handler) handleWSMessage(c *WSClient, msg *WSMessage) {
	ctx := context.Background()

	switch msg.Type {
	case "play":
		var payload struct {
			Game  domain.GameID `json:"game"`
			Wager domain.Money  `json:"wager"`
			Bet   string        `json:"bet"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			h.sendError(c, "INVALID_PAYLOAD", "Invalid play payload")
			return
		}
		res, err := h.engine.Play(ctx, c.session, payload.Game, game.PlayRequest{
			Wager: payload.Wager,
			Bet:   payload.Bet,
		})
		h.replyRound(c, res, err)

	case "act":
		var d game.Decision
		if err := json.Unmarshal(msg.Payload, &d); err != nil {
			h.sendError(c, "INVALID_PAYLOAD", "Invalid decision payload")
			return
		}
		if d.Action == "" {
			d.Action = game.ActionDraw
		}
		res, err := h.engine.Act(ctx, c.session, d)
		h.replyRound(c, res, err)

	case "balance":
		h.sendMessage(c, "balance", map[string]interface{}{
			"balance": c.session.Balance(),
			"wager":   c.session.Wager(),
		})

	case "ping":
		h.sendMessage(c, "pong", map[string]interface{}{
			"timestamp": time.Now().Unix(),
		})

	default:
		h.sendError(c, "UNKNOWN_MESSAGE", "Unknown message type: "+msg.Type)
	}
}

func (h *Handler) replyRound(c *WSClient, res *game.PlayResult, err error) {
	if err != nil {
		_, code := errorStatus(err)
		h.sendError(c, code, err.Error())
		return
	}
	h.hub.publish(c.session.ID, res)
}

// sendMessage sends a message to the client
func (h *Handler) sendMessage(c *WSClient, msgType string, payload interface{}) {
	msg, err := encodeMessage(msgType, payload)
	if err != nil {
		h.log.Error("encode websocket message", zap.String("type", msgType), zap.Error(err))
		return
	}
	c.enqueue(msg)
}

// sendError sends an error message to the client
func (h *Handler) sendError(c *WSClient, code, message string) {
	h.sendMessage(c, "error", map[string]string{
		"code":    code,
		"message": message,
	})
}
