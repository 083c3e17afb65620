package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// connection guards a socket so that broadcasts from other players' handlers
// never write concurrently with the owner's responses.
type connection struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{conn: conn}
}

func (that *connection) send(action string, payload Payload) error {
	message, err := newMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendError(action string, err error) error {
	return that.send(action, Payload{Error: err.Error()})
}
