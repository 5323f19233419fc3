package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one frame received on the realtime channel
type Event struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Channel is a connection to the realtime gateway
type Channel struct {
	conn *websocket.Conn
}

// WebsocketURL derives the gateway URL from the API base URL
func WebsocketURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// DialChannel opens the realtime channel with a bearer token
func DialChannel(ctx context.Context, serverURL, token string) (*Channel, error) {
	wsURL, err := WebsocketURL(serverURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			body, _ := io.ReadAll(resp.Body)
			return nil, decodeError(resp.StatusCode, body)
		}
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return &Channel{conn: conn}, nil
}

// Send writes one event
func (c *Channel) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", event, err)
	}
	frame := map[string]any{"event": event, "data": json.RawMessage(payload)}
	return c.conn.WriteJSON(frame)
}

// Next blocks for the next event
func (c *Channel) Next() (Event, error) {
	var evt Event
	if err := c.conn.ReadJSON(&evt); err != nil {
		return Event{}, err
	}
	evt.Time = time.Now()
	return evt, nil
}

// Close says goodbye and closes the connection
func (c *Channel) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
