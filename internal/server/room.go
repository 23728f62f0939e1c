package server

// Room membership is a transient set of connections per room id, never
// persisted. All methods in this file run on the ChatServer loop.

func (cs *ChatServer) joinRoom(req *membershipReq) {
	members, ok := cs.rooms[req.roomId]
	if !ok {
		members = make(map[*Client]struct{})
		cs.rooms[req.roomId] = members
		cs.stats.Incr("NumRooms")
	}

	members[req.client] = struct{}{}

	if !req.announce {
		return
	}

	req.client.queueMessage(AckOk(req.id))
	cs.fanOut(&broadcast{
		roomId: req.roomId,
		event: &ServerEvent{
			Event: EventUserJoined,
			Data:  &RoomChange{RoomId: req.roomId, SocketId: req.client.connId},
		},
	})
}

func (cs *ChatServer) leaveRoom(req *membershipReq) {
	if members, ok := cs.rooms[req.roomId]; ok {
		delete(members, req.client)
		if len(members) == 0 {
			delete(cs.rooms, req.roomId)
			cs.stats.Decr("NumRooms")
		}
	}

	if !req.announce {
		return
	}

	// leaving an unknown room still acks, matching the relaxed
	// semantics of the event channel
	req.client.queueMessage(AckOk(req.id))
	cs.fanOut(&broadcast{
		roomId: req.roomId,
		event: &ServerEvent{
			Event: EventUserLeft,
			Data:  &RoomChange{RoomId: req.roomId, SocketId: req.client.connId},
		},
	})
}

// dropFromAllRooms removes a disconnected client from every room set
// without announcing; presence changes are reported separately by the
// presence snapshot.
func (cs *ChatServer) dropFromAllRooms(c *Client) {
	for roomId, members := range cs.rooms {
		if _, ok := members[c]; !ok {
			continue
		}

		delete(members, c)
		if len(members) == 0 {
			delete(cs.rooms, roomId)
			cs.stats.Decr("NumRooms")
		}
	}
}

func (cs *ChatServer) fanOut(b *broadcast) {
	targets := cs.clients
	if b.roomId != "" {
		targets = cs.rooms[b.roomId]
	}

	for c := range targets {
		if c == b.event.SkipClient {
			continue
		}

		c.queueMessage(b.event)
	}
}

// queueBroadcast hands a broadcast to the run loop, dropping it with a
// log line when the channel is full.
func (cs *ChatServer) queueBroadcast(b *broadcast) bool {
	select {
	case cs.broadcastChan <- b:
		return true
	default:
		cs.log.Printf("broadcast channel full, dropping %q for room %q", b.event.Event, b.roomId)
		return false
	}
}
