package server

import (
	"github.com/ktcalder/chatrelay/internal/store"
	"github.com/ktcalder/chatrelay/internal/types"
)

// SendMessage persists the message and, only after the store commit,
// fans it out to the room and to the recipient's private room for
// direct messages. The ack carries the store-assigned id and creation
// time.
func (cs *ChatServer) SendMessage(c *Client, id int, p *SendPayload) {
	if p == nil {
		c.queueMessage(AckError(id, "invalid message format"))
		return
	}

	roomId := p.RoomId
	if roomId == "" {
		roomId = GlobalRoom
	}

	from := p.From
	if from.Name == "" {
		from.Name = c.Username()
	}

	saved, err := cs.store.CreateMessage(store.Message{
		RoomId:      roomId,
		Sender:      from,
		Recipient:   p.To,
		Text:        p.Text,
		Attachments: p.Attachments,
		Reactions:   types.Reactions{},
		ReadBy:      []string{},
		CreatedAt:   Now(),
	})
	if err != nil {
		cs.log.Println("create message:", err)
		c.queueMessage(AckError(id, "server error"))
		return
	}

	cs.stats.Incr("MessagesSent")
	c.queueMessage(AckMessage(id, saved.Id, saved.CreatedAt))

	event := &ServerEvent{
		Event: EventMessageNew,
		Data:  wireMessage(saved),
	}
	cs.queueBroadcast(&broadcast{roomId: roomId, event: event})

	if p.To != "" {
		cs.queueBroadcast(&broadcast{roomId: privateRoom(p.To), event: event})
	}
}

// MarkRead adds the user to the message's read set if absent, persists
// and broadcasts the receipt to the message's room. Fire-and-forget: a
// missing message or an already-present reader is a silent no-op.
func (cs *ChatServer) MarkRead(p *ReadPayload) {
	if p == nil || p.User == "" {
		return
	}

	saved, err := cs.store.GetMessage(p.MessageId)
	if err != nil {
		cs.log.Println("get message:", err)
		return
	}

	msg := wireMessage(saved)
	if !msg.AddReader(p.User) {
		return
	}

	if err := cs.store.UpdateReadBy(saved.Id, msg.ReadBy); err != nil {
		cs.log.Println("update read_by:", err)
		return
	}

	cs.queueBroadcast(&broadcast{
		roomId: saved.RoomId,
		event: &ServerEvent{
			Event: EventMessageRead,
			Data:  &ReadReceipt{MessageId: saved.Id, User: p.User},
		},
	})
}

// AddReaction adds the user to the emoji's reaction set (idempotent),
// persists and broadcasts the message's full reaction map to the room.
func (cs *ChatServer) AddReaction(p *ReactionPayload) {
	if p == nil || p.User == "" || p.Emoji == "" {
		return
	}

	saved, err := cs.store.GetMessage(p.MessageId)
	if err != nil {
		cs.log.Println("get message:", err)
		return
	}

	reactions := saved.Reactions
	if reactions == nil {
		reactions = types.Reactions{}
	}

	if reactions.Add(p.Emoji, p.User) {
		if err := cs.store.UpdateReactions(saved.Id, reactions); err != nil {
			cs.log.Println("update reactions:", err)
			return
		}
	}

	cs.queueBroadcast(&broadcast{
		roomId: p.RoomId,
		event: &ServerEvent{
			Event: EventReactionAdd,
			Data:  &ReactionUpdate{RoomId: p.RoomId, Reactions: reactions},
		},
	})
}

// RelayTyping fans a typing indicator out to the room, excluding the
// sender. Stateless, nothing persisted.
func (cs *ChatServer) RelayTyping(c *Client, p *TypingPayload) {
	if p == nil || p.RoomId == "" {
		return
	}

	cs.queueBroadcast(&broadcast{
		roomId: p.RoomId,
		event: &ServerEvent{
			Event:      EventTyping,
			Data:       p,
			SkipClient: c,
		},
	})
}

func wireMessage(m store.Message) *types.Message {
	return &types.Message{
		Id:          m.Id,
		RoomId:      m.RoomId,
		From:        m.Sender,
		To:          m.Recipient,
		Text:        m.Text,
		Attachments: m.Attachments,
		Reactions:   m.Reactions,
		ReadBy:      m.ReadBy,
		CreatedAt:   m.CreatedAt,
	}
}
