package http

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"live-quiz-service/internal/app"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 32
)

var errSendBufferFull = errors.New("send buffer full")

// WSHandler upgrades HTTP requests and feeds frames into the coordinator.
// Room selection happens via the join payload, not the URL.
type WSHandler struct {
	coordinator *app.Coordinator
	upgrader    websocket.Upgrader
}

func NewWSHandler(coordinator *app.Coordinator) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs the connection's read loop. Each
// connection reads sequentially, so its messages reach the coordinator in
// receipt order; a separate write pump serializes outbound frames so
// broadcasts from other connections never interleave writes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	c := newConn(uuid.New().String(), ws)
	go c.writePump()

	defer func() {
		// Leave the room before anything else so the next broadcast no
		// longer sees this connection.
		h.coordinator.HandleDisconnect(c)
		c.close()
	}()

	ws.SetReadLimit(maxMessageSize)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error on %s: %v", c.ID(), err)
			}
			return
		}
		h.coordinator.HandleMessage(r.Context(), c, data)
	}
}

// conn adapts a gorilla websocket to registry.Conn.
type conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(id string, ws *websocket.Conn) *conn {
	return &conn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (c *conn) ID() string { return c.id }

// Send queues one outbound frame without blocking. A closed connection or a
// full buffer returns an error; the caller treats either as an isolated
// delivery failure.
func (c *conn) Send(data []byte) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	default:
		return errSendBufferFull
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *conn) writePump() {
	defer c.close()
	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
