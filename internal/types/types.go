package types

import (
	"slices"
	"time"
)

// Identity is a registered username and its current connection state.
// ConnId is non-empty exactly when IsOnline is true.
type Identity struct {
	Username  string    `json:"username"`
	ConnId    string    `json:"connId,omitempty"`
	IsOnline  bool      `json:"isOnline"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// PresenceEntry is one row of the presence snapshot broadcast to all
// connected clients whenever an identity goes on- or offline.
type PresenceEntry struct {
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

type Sender struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Attachment struct {
	Url      string `json:"url"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Size     int64  `json:"size"`
}

// Reactions maps an emoji to the set of usernames that reacted with it.
// The per-emoji slices have set semantics, enforced by Add.
type Reactions map[string][]string

// Add appends username under emoji and reports whether the set changed.
func (r Reactions) Add(emoji, username string) bool {
	if slices.Contains(r[emoji], username) {
		return false
	}

	r[emoji] = append(r[emoji], username)
	return true
}

type Message struct {
	Id          int64        `json:"id"`
	RoomId      string       `json:"roomId"`
	From        Sender       `json:"from"`
	To          string       `json:"to,omitempty"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
	Reactions   Reactions    `json:"reactions"`
	ReadBy      []string     `json:"readBy"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// AddReader adds username to the message's read set and reports whether
// it was newly added.
func (m *Message) AddReader(username string) bool {
	if slices.Contains(m.ReadBy, username) {
		return false
	}

	m.ReadBy = append(m.ReadBy, username)
	return true
}
