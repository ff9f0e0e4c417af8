// Package ws adapts websocket connections onto the chat core. Each
// connection runs a read pump and a write pump; whichever side fails
// first tears the connection down exactly once, and the chat core's
// done channel unwinds the other side.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/booktime/backend/internal/application/support"
	"github.com/booktime/backend/internal/domain/chat"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// settings are the per-connection transport limits.
type settings struct {
	readLimit    int64
	writeTimeout time.Duration
	pingInterval time.Duration
	pongTimeout  time.Duration
}

// roomClient pumps one websocket connection in and out of a chat room.
type roomClient struct {
	conn    *websocket.Conn
	chat    *support.ChatService
	room    *chat.Room
	member  *chat.Member
	orderID uuid.UUID
	cfg     settings
	log     *zap.Logger

	closeOnce sync.Once
}

// run blocks until the connection is torn down.
func (c *roomClient) run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

// teardown leaves the room and closes the socket. Single-flight: both
// pumps defer it, only the first invocation does the work.
func (c *roomClient) teardown() {
	c.closeOnce.Do(func() {
		c.chat.LeaveRoom(c.orderID, c.member)
		_ = c.conn.Close()
	})
}

// readPump consumes inbound frames until the connection drops. Only
// frames of type "message" are relayed; anything else, including frames
// that fail to parse, is ignored.
func (c *roomClient) readPump(ctx context.Context) {
	defer c.teardown()

	c.conn.SetReadLimit(c.cfg.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.pongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("Websocket read ended",
					zap.String("order_id", c.orderID.String()),
					zap.Error(err))
			}
			return
		}

		var frame chat.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type != chat.InboundTypeMessage {
			continue
		}
		c.chat.SendMessage(ctx, c.room, c.member, frame.Message)
	}
}

// writePump serializes room events onto the socket in broadcast order
// and keeps the connection alive with periodic pings.
func (c *roomClient) writePump() {
	ticker := time.NewTicker(c.cfg.pingInterval)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		select {
		case <-c.member.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case ev := <-c.member.Events():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// notifyClient pumps notification payloads onto one staff websocket
// connection. The read side exists only to answer pings and detect the
// peer going away; inbound frames are discarded.
type notifyClient struct {
	conn *websocket.Conn
	chat *support.ChatService
	sub  *chat.Subscriber
	cfg  settings
	log  *zap.Logger

	closeOnce sync.Once
}

// run blocks until the connection is torn down.
func (c *notifyClient) run() {
	go c.writePump()
	c.readPump()
}

func (c *notifyClient) teardown() {
	c.closeOnce.Do(func() {
		c.chat.UnsubscribeNotifications(c.sub)
		_ = c.conn.Close()
	})
}

func (c *notifyClient) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(c.cfg.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *notifyClient) writePump() {
	ticker := time.NewTicker(c.cfg.pingInterval)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		select {
		case <-c.sub.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case payload := <-c.sub.Events():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
