package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ktcalder/chatrelay/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one websocket connection. The connection handle (connId)
// identifies it for the lifetime of the socket; the bound identity is
// set on login. Per connection the state machine is
// anonymous -> authenticated -> disconnected, with no resume: a new
// connection always logs in again.
type Client struct {
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *log.Logger
	connId     string
	user       types.Identity
	send       chan *ServerEvent
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewClient(connId string, conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		connId:     connId,
		send:       make(chan *ServerEvent, 256),
		stop:       make(chan struct{}),
	}
}

func (c *Client) setUser(ident types.Identity) {
	c.user = ident
}

func (c *Client) Username() string {
	return c.user.Username
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := serializeEvent(evt)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var evt ClientEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueMessage(AckError(0, "invalid message format"))
			continue
		}

		c.dispatch(&evt)
	}
}

func (c *Client) dispatch(evt *ClientEvent) {
	switch evt.Event {
	case EventLogin:
		var p LoginPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.Login(c, evt.Id, &p)
	case EventJoinRoom:
		var p RoomPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.JoinRoom(c, evt.Id, &p)
	case EventLeaveRoom:
		var p RoomPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.LeaveRoom(c, evt.Id, &p)
	case EventMessageSend:
		var p SendPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.SendMessage(c, evt.Id, &p)
	case EventMessageRead:
		var p ReadPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.MarkRead(&p)
	case EventTyping:
		var p TypingPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.RelayTyping(c, &p)
	case EventReactionAdd:
		var p ReactionPayload
		if !c.decodePayload(evt, &p) {
			return
		}
		c.chatServer.AddReaction(&p)
	default:
		c.log.Printf("ignoring unknown event %q", evt.Event)
	}
}

func (c *Client) decodePayload(evt *ClientEvent, v any) bool {
	if err := json.Unmarshal(evt.Data, v); err != nil {
		c.log.Printf("error parsing %q payload: %v", evt.Event, err)
		c.queueMessage(AckError(evt.Id, "invalid message format"))
		return false
	}

	return true
}

func (c *Client) queueMessage(evt *ServerEvent) bool {
	select {
	case c.send <- evt:
	default:
		c.log.Println("failed to send event to client, channel is full")
		return false
	}

	return true
}

func serializeEvent(evt *ServerEvent) ([]byte, error) {
	return json.Marshal(evt)
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.chatServer.Disconnect(c)
	c.stopClient()
}
