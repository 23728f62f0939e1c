package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ktcalder/chatrelay/internal/types"
	"github.com/tidwall/buntdb"
)

const (
	identityPrefix = "identity:"
	connIndex      = "identity-conn"
)

// BuntDirectory stores identities as JSON documents in buntdb, one
// document per username, with a secondary index on the connection id.
type BuntDirectory struct {
	db *buntdb.DB
}

// Open opens (or creates) the identity database at path. Pass
// ":memory:" for an ephemeral directory.
func Open(path string) (*BuntDirectory, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identity db: %w", err)
	}

	if err := db.CreateIndex(connIndex, identityPrefix+"*", buntdb.IndexJSON("connId")); err != nil {
		db.Close()
		return nil, fmt.Errorf("create conn index: %w", err)
	}

	return &BuntDirectory{db: db}, nil
}

func (d *BuntDirectory) Upsert(username, connId string) (types.Identity, error) {
	ident := types.Identity{
		Username:  username,
		ConnId:    connId,
		IsOnline:  true,
		CreatedAt: time.Now().UTC(),
	}

	err := d.db.Update(func(tx *buntdb.Tx) error {
		key := identityPrefix + username
		if raw, err := tx.Get(key); err == nil {
			var existing types.Identity
			if err := json.Unmarshal([]byte(raw), &existing); err == nil && !existing.CreatedAt.IsZero() {
				ident.CreatedAt = existing.CreatedAt
			}
		} else if !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}

		doc, err := json.Marshal(ident)
		if err != nil {
			return err
		}

		_, _, err = tx.Set(key, string(doc), nil)
		return err
	})
	if err != nil {
		return types.Identity{}, fmt.Errorf("upsert identity %q: %w", username, err)
	}

	return ident, nil
}

func (d *BuntDirectory) Release(connId string) (types.Identity, bool, error) {
	var ident types.Identity
	var found bool

	err := d.db.Update(func(tx *buntdb.Tx) error {
		pivot := fmt.Sprintf(`{"connId":%q}`, connId)
		err := tx.AscendEqual(connIndex, pivot, func(key, value string) bool {
			if err := json.Unmarshal([]byte(value), &ident); err == nil {
				found = true
			}
			return false
		})
		if err != nil || !found {
			return err
		}

		ident.ConnId = ""
		ident.IsOnline = false

		doc, err := json.Marshal(ident)
		if err != nil {
			return err
		}

		_, _, err = tx.Set(identityPrefix+ident.Username, string(doc), nil)
		return err
	})
	if err != nil {
		return types.Identity{}, false, fmt.Errorf("release conn %q: %w", connId, err)
	}

	return ident, found, nil
}

func (d *BuntDirectory) List() ([]types.Identity, error) {
	idents := make([]types.Identity, 0)

	err := d.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(identityPrefix+"*", func(key, value string) bool {
			var ident types.Identity
			if err := json.Unmarshal([]byte(value), &ident); err == nil {
				idents = append(idents, ident)
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	return idents, nil
}

func (d *BuntDirectory) Close() error {
	return d.db.Close()
}
