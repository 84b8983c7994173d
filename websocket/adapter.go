package websocket

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ry44444n/Ma-Anong-Ulam-App/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// ErrSendBufferFull is returned when a session's outbound buffer cannot
// accept another frame. The relay treats it as grounds for eviction.
var ErrSendBufferFull = errors.New("websocket: send buffer full")

// Conn adapts one gorilla websocket connection to domain.Connection. Frames
// handed to Send are queued on a bounded channel and written by a dedicated
// pump, so the relay never blocks on a slow participant.
type Conn struct {
	id          string
	displayName string
	ws          *websocket.Conn
	send        chan []byte
	relay       domain.Broadcaster
	handler     domain.EventHandler
}

func NewConn(id, displayName string, ws *websocket.Conn, relay domain.Broadcaster, handler domain.EventHandler) *Conn {
	return &Conn{
		id:          id,
		displayName: displayName,
		ws:          ws,
		send:        make(chan []byte, sendBufferSize),
		relay:       relay,
		handler:     handler,
	}
}

func (c *Conn) ID() string          { return c.id }
func (c *Conn) DisplayName() string { return c.displayName }

func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

// Start registers the session with the relay, which replays the room
// history into the send queue before any new broadcast can reach it, then
// starts the pumps.
func (c *Conn) Start() {
	c.relay.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.relay.Unregister(c.id)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "sessionId", c.id, "error", err)
			}
			return
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
