package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReactionsAdd(t *testing.T) {
	r := Reactions{}

	added := r.Add("👍", "alice")
	assert.True(t, added, "expected first reaction to be added")
	assert.Equal(t, []string{"alice"}, r["👍"], "expected alice under 👍")

	added = r.Add("👍", "alice")
	assert.False(t, added, "expected duplicate reaction to be a no-op")
	assert.Equal(t, []string{"alice"}, r["👍"], "expected exactly one entry for alice")

	added = r.Add("👍", "bob")
	assert.True(t, added, "expected reaction from second user to be added")
	assert.Equal(t, []string{"alice", "bob"}, r["👍"], "expected both users under 👍")

	added = r.Add("🎉", "alice")
	assert.True(t, added, "expected reaction with new emoji to be added")
	assert.Len(t, r, 2, "expected two emoji keys")
}

func TestMessageAddReader(t *testing.T) {
	m := &Message{ReadBy: []string{}}

	assert.True(t, m.AddReader("alice"), "expected alice to be newly added")
	assert.False(t, m.AddReader("alice"), "expected second add to be a no-op")
	assert.Equal(t, []string{"alice"}, m.ReadBy, "expected exactly one reader")

	assert.True(t, m.AddReader("bob"), "expected bob to be newly added")
	assert.Equal(t, []string{"alice", "bob"}, m.ReadBy, "expected readers in insertion order")
}
