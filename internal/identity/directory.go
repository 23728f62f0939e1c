package identity

import (
	"github.com/ktcalder/chatrelay/internal/types"
)

// Directory is the identity store mapping usernames to their current
// connection state. Identities are upserted on login and never deleted.
type Directory interface {
	// Upsert registers username as online on the given connection,
	// creating the identity if it does not exist.
	Upsert(username, connId string) (types.Identity, error)
	// Release looks up the identity bound to connId, clears its handle
	// and marks it offline. The bool reports whether an identity was
	// bound to the handle.
	Release(connId string) (types.Identity, bool, error)
	// List returns all known identities.
	List() ([]types.Identity, error)
	Close() error
}
