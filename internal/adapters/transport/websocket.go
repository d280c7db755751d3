package transport

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sobot/internal/core/domain"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 20 // 1MB
)

type event struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Room     string `json:"room,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Text     string `json:"text,omitempty"`
	Time     int64  `json:"time,omitempty"`
}

// Client holds one persistent chat connection. Outbound posts funnel through
// a single write pump, which is what gives sequential posts from one handler
// invocation their in-order delivery.
type Client struct {
	conn    *websocket.Conn
	send    chan event
	done    chan struct{}
	handler func(*domain.Message)
}

func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", url).Msg("chat connection established")

	return &Client{
		conn: conn,
		send: make(chan event, 256),
		done: make(chan struct{}),
	}, nil
}

// OnMessage sets the callback invoked for every incoming chat message.
// Must be called before Run.
func (c *Client) OnMessage(handler func(*domain.Message)) {
	c.handler = handler
}

// Join enrolls the connection in a room so its messages are delivered.
func (c *Client) Join(ctx context.Context, room string) error {
	return c.enqueue(ctx, event{Type: "join", Room: room})
}

// Post sends text to a room and returns the client-assigned message ID.
func (c *Client) Post(ctx context.Context, room, text string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	if err := c.enqueue(ctx, event{Type: "post", ID: id.String(), Room: room, Text: text}); err != nil {
		return "", err
	}

	return id.String(), nil
}

func (c *Client) enqueue(ctx context.Context, ev event) error {
	select {
	case c.send <- ev:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the read and write pumps until the connection drops or ctx is
// cancelled.
func (c *Client) Run(ctx context.Context) error {
	go c.writePump(ctx)
	return c.readPump()
}

func (c *Client) readPump() error {
	defer close(c.done)

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Msg("chat connection dropped")
				return err
			}
			return nil
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn().Err(err).Msg("discarding unparsable frame")
			continue
		}

		if ev.Type != "message" || c.handler == nil {
			continue
		}

		c.handler(&domain.Message{
			ID:        ev.ID,
			Room:      ev.Room,
			UserID:    ev.UserID,
			UserName:  ev.UserName,
			Text:      ev.Text,
			Timestamp: time.Unix(ev.Time, 0),
		})
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Error().Err(err).Msg("write failed, closing connection")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
