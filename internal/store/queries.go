package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ktcalder/chatrelay/internal/types"
)

func (s *PgMessageStore) CreateMessage(msg Message) (Message, error) {
	sender, err := json.Marshal(msg.Sender)
	if err != nil {
		return Message{}, fmt.Errorf("marshal sender: %w", err)
	}

	attachments, err := json.Marshal(emptyIfNilAttachments(msg.Attachments))
	if err != nil {
		return Message{}, fmt.Errorf("marshal attachments: %w", err)
	}

	reactions, err := json.Marshal(emptyIfNilReactions(msg.Reactions))
	if err != nil {
		return Message{}, fmt.Errorf("marshal reactions: %w", err)
	}

	readBy, err := json.Marshal(emptyIfNilReaders(msg.ReadBy))
	if err != nil {
		return Message{}, fmt.Errorf("marshal read_by: %w", err)
	}

	var recipient sql.NullString
	if msg.Recipient != "" {
		recipient = sql.NullString{String: msg.Recipient, Valid: true}
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res := s.conn.QueryRow(
		"INSERT INTO messages (room_id, sender, recipient, text, attachments, reactions, read_by, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at",
		msg.RoomId,
		sender,
		recipient,
		msg.Text,
		attachments,
		reactions,
		readBy,
		createdAt,
	)

	if err := res.Scan(&msg.Id, &msg.CreatedAt); err != nil {
		return Message{}, err
	}

	return msg, nil
}

func (s *PgMessageStore) GetMessage(id int64) (Message, error) {
	row := s.conn.QueryRow(
		"SELECT id, room_id, sender, recipient, text, attachments, reactions, read_by, created_at "+
			"FROM messages WHERE id = $1 LIMIT 1",
		id,
	)

	return scanMessage(row)
}

func (s *PgMessageStore) UpdateReactions(id int64, reactions types.Reactions) error {
	raw, err := json.Marshal(emptyIfNilReactions(reactions))
	if err != nil {
		return fmt.Errorf("marshal reactions: %w", err)
	}

	_, err = s.conn.Exec("UPDATE messages SET reactions = $2 WHERE id = $1", id, raw)
	return err
}

func (s *PgMessageStore) UpdateReadBy(id int64, readBy []string) error {
	raw, err := json.Marshal(emptyIfNilReaders(readBy))
	if err != nil {
		return fmt.Errorf("marshal read_by: %w", err)
	}

	_, err = s.conn.Exec("UPDATE messages SET read_by = $2 WHERE id = $1", id, raw)
	return err
}

func (s *PgMessageStore) ListMessages(roomId string, before time.Time, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := s.conn.Query(
		"SELECT id, room_id, sender, recipient, text, attachments, reactions, read_by, created_at "+
			"FROM messages WHERE room_id = $1 AND created_at < $2 ORDER BY created_at DESC LIMIT $3",
		roomId,
		before,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (Message, error) {
	var (
		msg         Message
		sender      []byte
		recipient   sql.NullString
		attachments []byte
		reactions   []byte
		readBy      []byte
	)

	err := row.Scan(
		&msg.Id,
		&msg.RoomId,
		&sender,
		&recipient,
		&msg.Text,
		&attachments,
		&reactions,
		&readBy,
		&msg.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	if err := json.Unmarshal(sender, &msg.Sender); err != nil {
		return Message{}, fmt.Errorf("unmarshal sender: %w", err)
	}
	if err := json.Unmarshal(attachments, &msg.Attachments); err != nil {
		return Message{}, fmt.Errorf("unmarshal attachments: %w", err)
	}
	if err := json.Unmarshal(reactions, &msg.Reactions); err != nil {
		return Message{}, fmt.Errorf("unmarshal reactions: %w", err)
	}
	if err := json.Unmarshal(readBy, &msg.ReadBy); err != nil {
		return Message{}, fmt.Errorf("unmarshal read_by: %w", err)
	}

	msg.Recipient = recipient.String

	return msg, nil
}

func emptyIfNilAttachments(a []types.Attachment) []types.Attachment {
	if a == nil {
		return []types.Attachment{}
	}
	return a
}

func emptyIfNilReactions(r types.Reactions) types.Reactions {
	if r == nil {
		return types.Reactions{}
	}
	return r
}

func emptyIfNilReaders(r []string) []string {
	if r == nil {
		return []string{}
	}
	return r
}
