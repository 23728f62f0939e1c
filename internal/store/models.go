package store

import (
	"time"

	"github.com/ktcalder/chatrelay/internal/types"
)

// Message is the persisted message record. RoomId is immutable once
// created; Reactions and ReadBy grow monotonically and are the only
// mutable fields.
type Message struct {
	Id          int64
	RoomId      string
	Sender      types.Sender
	Recipient   string
	Text        string
	Attachments []types.Attachment
	Reactions   types.Reactions
	ReadBy      []string
	CreatedAt   time.Time
}
