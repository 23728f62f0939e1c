package server

import (
	"encoding/json"
	"time"

	"github.com/ktcalder/chatrelay/internal/types"
)

// Client-to-server event names.
const (
	EventLogin       = "auth:login"
	EventJoinRoom    = "join:room"
	EventLeaveRoom   = "leave:room"
	EventMessageSend = "message:send"
	EventMessageRead = "message:read"
	EventTyping      = "typing"
	EventReactionAdd = "reaction:add"
)

// Server-to-client event names. EventMessageRead, EventTyping and
// EventReactionAdd are echoed under their inbound names.
const (
	EventAck            = "ack"
	EventPresenceUpdate = "presence:update"
	EventMessageNew     = "message:new"
	EventUserJoined     = "user:joined"
	EventUserLeft       = "user:left"
)

// GlobalRoom is the room a message falls into when the sender names none.
const GlobalRoom = "global"

// ClientEvent is the inbound wire envelope. Id is an optional
// correlation id echoed back on the ack, zero for fire-and-forget
// events.
type ClientEvent struct {
	Id    int             `json:"id,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type LoginPayload struct {
	Username string `json:"username"`
}

type RoomPayload struct {
	RoomId string `json:"roomId"`
}

type SendPayload struct {
	RoomId      string             `json:"roomId"`
	From        types.Sender       `json:"from"`
	To          string             `json:"to,omitempty"`
	Text        string             `json:"text"`
	Attachments []types.Attachment `json:"attachments"`
}

type ReadPayload struct {
	MessageId int64  `json:"messageId"`
	User      string `json:"user"`
}

type TypingPayload struct {
	RoomId   string `json:"roomId"`
	User     string `json:"user"`
	IsTyping bool   `json:"isTyping"`
}

type ReactionPayload struct {
	RoomId    string `json:"roomId"`
	MessageId int64  `json:"messageId"`
	Emoji     string `json:"emoji"`
	User      string `json:"user"`
}

// ServerEvent is the outbound wire envelope.
type ServerEvent struct {
	Id    int    `json:"id,omitempty"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`

	// SkipClient is excluded from fan-out, used for sender-exclusive
	// broadcasts such as typing indicators.
	SkipClient *Client `json:"-"`
}

// Ack is the single response returned to an event's sender.
type Ack struct {
	Ok        bool            `json:"ok"`
	Error     string          `json:"error,omitempty"`
	User      *types.Identity `json:"user,omitempty"`
	MessageId int64           `json:"id,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

type RoomChange struct {
	RoomId   string `json:"roomId"`
	SocketId string `json:"socketId"`
}

type ReadReceipt struct {
	MessageId int64  `json:"messageId"`
	User      string `json:"user"`
}

type ReactionUpdate struct {
	RoomId    string          `json:"roomId"`
	Reactions types.Reactions `json:"reactions"`
}

func AckOk(id int) *ServerEvent {
	return &ServerEvent{
		Id:    id,
		Event: EventAck,
		Data:  &Ack{Ok: true},
	}
}

func AckUser(id int, user types.Identity) *ServerEvent {
	return &ServerEvent{
		Id:    id,
		Event: EventAck,
		Data:  &Ack{Ok: true, User: &user},
	}
}

func AckMessage(id int, messageId int64, createdAt time.Time) *ServerEvent {
	return &ServerEvent{
		Id:    id,
		Event: EventAck,
		Data:  &Ack{Ok: true, MessageId: messageId, CreatedAt: &createdAt},
	}
}

func AckError(id int, msg string) *ServerEvent {
	return &ServerEvent{
		Id:    id,
		Event: EventAck,
		Data:  &Ack{Error: msg},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
