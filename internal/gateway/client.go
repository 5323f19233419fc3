package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/tcgarena/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Time between pings, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest inbound frame accepted
	maxMessageSize = 8 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one authenticated websocket connection
type Client struct {
	id          string
	conn        *websocket.Conn
	send        chan []byte
	userID      model.UserID
	label       string
	connectedAt time.Time
}

// NewClient creates a client bound to the verified identity of the connection
func NewClient(conn *websocket.Conn, userID model.UserID, label string) *Client {
	return &Client{
		id:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		userID:      userID,
		label:       label,
		connectedAt: time.Now(),
	}
}

// ID returns the connection id
func (c *Client) ID() string { return c.id }

// UserID returns the authenticated user
func (c *Client) UserID() model.UserID { return c.userID }

// Label returns the display name used when the client takes a seat
func (c *Client) Label() string { return c.label }

// readPump decodes inbound frames and hands them to dispatch one at a time.
// Returns when the peer goes away or a read fails.
func (c *Client) readPump(logger *slog.Logger, dispatch func(*Client, *Envelope)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn("websocket read failed",
					slog.String("client_id", c.id),
					slog.Any("error", err))
			}
			return
		}
		if kind != websocket.TextMessage {
			dispatch(c, nil)
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			dispatch(c, nil)
			continue
		}
		dispatch(c, &env)
	}
}

// writePump drains the send buffer onto the socket and keeps the
// connection alive with pings. Returns when the hub closes the buffer or
// a write fails.
func (c *Client) writePump(logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					logger.Debug("websocket write failed",
						slog.String("client_id", c.id),
						slog.Any("error", err))
				}
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
