package server

import (
	"strings"
)

// privateRoom is the per-user broadcast scope used for direct messages.
func privateRoom(username string) string {
	return "user:" + username
}

// Login binds the connection to an identity: the username is upserted
// in the directory with the current handle, the connection is
// subscribed to its private room, and a fresh presence snapshot goes
// out to everyone.
func (cs *ChatServer) Login(c *Client, id int, p *LoginPayload) {
	if p == nil || strings.TrimSpace(p.Username) == "" {
		c.queueMessage(AckError(id, "username required"))
		return
	}

	ident, err := cs.directory.Upsert(p.Username, c.connId)
	if err != nil {
		cs.log.Println("upsert identity:", err)
		c.queueMessage(AckError(id, "server error"))
		return
	}

	c.setUser(ident)
	cs.stats.Incr("NumOnlineUsers")

	select {
	case cs.joinChan <- &membershipReq{roomId: privateRoom(ident.Username), client: c}:
	default:
		cs.log.Printf("join channel full, %q not subscribed to private room", ident.Username)
	}

	cs.BroadcastPresence()
	c.queueMessage(AckUser(id, ident))
}

// Disconnect releases the connection's identity, publishes the updated
// presence snapshot and deregisters the connection. Safe to call for
// connections that never logged in, and a second call for the same
// handle is a no-op on the directory.
func (cs *ChatServer) Disconnect(c *Client) {
	ident, found, err := cs.directory.Release(c.connId)
	if err != nil {
		cs.log.Println("release identity:", err)
	}

	if found {
		cs.log.Printf("user %q disconnected", ident.Username)
		cs.stats.Decr("NumOnlineUsers")
		cs.BroadcastPresence()
	}

	select {
	case cs.deRegisterChan <- c:
	default:
		cs.log.Printf("deregister channel full for connection %q", c.connId)
	}
}

// JoinRoom subscribes the connection to a room and announces it.
func (cs *ChatServer) JoinRoom(c *Client, id int, p *RoomPayload) {
	if p == nil || p.RoomId == "" {
		c.queueMessage(AckError(id, "roomId required"))
		return
	}

	select {
	case cs.joinChan <- &membershipReq{id: id, roomId: p.RoomId, client: c, announce: true}:
	default:
		cs.log.Printf("join channel full for room %q", p.RoomId)
		c.queueMessage(AckError(id, "server error"))
	}
}

// LeaveRoom unsubscribes the connection from a room and announces it.
func (cs *ChatServer) LeaveRoom(c *Client, id int, p *RoomPayload) {
	if p == nil || p.RoomId == "" {
		c.queueMessage(AckError(id, "roomId required"))
		return
	}

	select {
	case cs.leaveChan <- &membershipReq{id: id, roomId: p.RoomId, client: c, announce: true}:
	default:
		cs.log.Printf("leave channel full for room %q", p.RoomId)
		c.queueMessage(AckError(id, "server error"))
	}
}
