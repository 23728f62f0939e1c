package store

import (
	"time"

	"github.com/ktcalder/chatrelay/internal/types"
)

type MessageRepository interface {
	Ping() error
	// CreateMessage persists msg and returns it with the store-assigned
	// id and creation time filled in.
	CreateMessage(msg Message) (Message, error)
	GetMessage(id int64) (Message, error)
	UpdateReactions(id int64, reactions types.Reactions) error
	UpdateReadBy(id int64, readBy []string) error
	// ListMessages returns up to limit messages in roomId created
	// strictly before the given time, newest first.
	ListMessages(roomId string, before time.Time, limit int) ([]Message, error)
}
