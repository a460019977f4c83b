package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
)

// WebSocket timeouts, after the gorilla chat example.
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; ingest frames carry whole sources
	maxMessageSize = MaxIngestBytes
)

// Client represents a WebSocket client connection
type Client struct {
	server    *Server
	conn      *websocket.Conn
	send      chan interface{}
	done      chan struct{}
	id        string
	closeOnce sync.Once
}

func newClient(s *Server, conn *websocket.Conn, id string) *Client {
	return &Client{
		server: s,
		conn:   conn,
		send:   make(chan interface{}, MaxClientMessageQueueSize),
		done:   make(chan struct{}),
		id:     id,
	}
}

// close stops the write pump and closes the connection. Safe to call twice.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
			c.close()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.server.logger.Warnw("JSON unmarshal error",
				"error", err.Error(),
				"client_id", c.id,
			)
			c.reply(&ServerMessage{
				Type:   MsgError,
				Error:  "invalid JSON frame",
				Status: 400,
			})
			continue
		}

		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		c.server.logger.Warnw("WebSocket read error",
			"client_id", c.id,
			"error", err,
		)
	}
}

// routeMessage answers one request frame. Requests run on the read
// goroutine, so one client's frames are answered in order.
func (c *Client) routeMessage(msg *ClientMessage) {
	c.server.metrics.wsFrames.WithLabelValues(frameLabel(msg.Type)).Inc()

	if msg.Type == MsgPing {
		c.reply(&ServerMessage{Type: MsgPong, RequestID: msg.RequestID})
		return
	}

	ctx := logger.WithRequestID(c.server.ctx, msg.RequestID)
	data, err := c.dispatch(ctx, msg)
	if err != nil {
		c.replyError(msg, err)
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		c.replyError(msg, errors.Wrap(err, "failed to encode result"))
		return
	}
	c.reply(&ServerMessage{
		Type:      MsgResult,
		RequestID: msg.RequestID,
		For:       msg.Type,
		Data:      raw,
	})
}

// dispatch runs the service call a frame names.
func (c *Client) dispatch(ctx context.Context, msg *ClientMessage) (interface{}, error) {
	if c.server.State() != ServerStateRunning {
		return nil, errDraining
	}
	svc := c.server.svc
	switch msg.Type {
	case MsgResolve:
		return svc.ResolveEntity(ctx, msg.ID)
	case MsgSearch:
		return svc.Search(ctx, msg.Text, msg.Limit)
	case MsgIcon:
		return svc.GetIcon(ctx, msg.ID)
	case MsgBacklinks:
		return svc.ListBacklinks(ctx, msg.ID)
	case MsgIngest:
		report, err := svc.Ingest(ctx, msg.Name, []byte(msg.Content))
		if err != nil {
			return nil, err
		}
		return report, nil
	case MsgStats:
		return svc.Stats(ctx)
	}
	return nil, errors.NewInvalidRequestError("unknown message type %q", msg.Type)
}

func (c *Client) replyError(msg *ClientMessage, err error) {
	status := statusFor(err)
	if status >= 500 {
		c.server.logger.Errorw("WebSocket request failed",
			"client_id", c.id,
			"type", msg.Type,
			"error", err,
		)
	}
	c.reply(&ServerMessage{
		Type:      MsgError,
		RequestID: msg.RequestID,
		For:       msg.Type,
		Error:     publicMessage(err),
		Status:    status,
	})
}

// reply queues a frame for the write pump, dropping it if the queue is full.
func (c *Client) reply(msg *ServerMessage) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.server.logger.Warnw("Client send queue full, dropping reply",
			"client_id", c.id,
			"type", msg.Type,
		)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Debugw("WebSocket write failed", "client_id", c.id, "error", err)
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

// frameLabel bounds metric label cardinality to the known request types.
func frameLabel(t string) string {
	switch t {
	case MsgResolve, MsgSearch, MsgIcon, MsgBacklinks, MsgIngest, MsgStats, MsgPing:
		return t
	}
	return "unknown"
}
