package server

import (
	"github.com/ktcalder/chatrelay/internal/types"
)

// BroadcastPresence publishes the full online/offline snapshot to every
// connected client. Full-snapshot on every change is O(n) but keeps
// clients trivially consistent.
func (cs *ChatServer) BroadcastPresence() {
	idents, err := cs.directory.List()
	if err != nil {
		cs.log.Println("list identities:", err)
		return
	}

	entries := make([]types.PresenceEntry, 0, len(idents))
	for _, ident := range idents {
		entries = append(entries, types.PresenceEntry{
			Username: ident.Username,
			IsOnline: ident.IsOnline,
		})
	}

	cs.queueBroadcast(&broadcast{
		event: &ServerEvent{
			Event: EventPresenceUpdate,
			Data:  entries,
		},
	})
}
