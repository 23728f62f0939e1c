package server

import (
	"testing"

	"github.com/ktcalder/chatrelay/internal/identity"
	"github.com/ktcalder/chatrelay/internal/stats"
	"github.com/ktcalder/chatrelay/internal/store"
	"github.com/ktcalder/chatrelay/internal/testutil"
	"github.com/ktcalder/chatrelay/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	cs := newTestChatServer(t, &store.MockMessageRepository{}, &identity.MockDirectory{}, &stats.MockStatsUpdater{})

	c := NewClient("conn-1", nil, cs, testutil.TestLogger(t))

	assert.Equal(t, "conn-1", c.connId, "expected connection handle to be set")
	assert.Equal(t, cs, c.chatServer, "expected chat server to be set")
	assert.NotNil(t, c.send, "expected send channel to be initialized")
	assert.NotNil(t, c.stop, "expected stop channel to be initialized")
	assert.Empty(t, c.Username(), "expected no identity before login")
}

func TestClient_dispatch(t *testing.T) {
	t.Run("routes login to the server", func(t *testing.T) {
		ident := types.Identity{Username: "alice", ConnId: "conn-1", IsOnline: true}

		dir := &identity.MockDirectory{}
		dir.On("Upsert", "alice", "conn-1").Return(ident, nil)
		dir.On("List").Return([]types.Identity{ident}, nil)
		defer dir.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", "NumOnlineUsers").Once()
		defer su.AssertExpectations(t)

		cs := newTestChatServer(t, &store.MockMessageRepository{}, dir, su)
		c := newTestClient(t, cs, "conn-1")

		c.dispatch(&ClientEvent{
			Id:    1,
			Event: EventLogin,
			Data:  []byte(`{"username":"alice"}`),
		})

		assert.Equal(t, "alice", c.Username(), "expected login to be handled")
	})

	t.Run("malformed payload is rejected with the request id", func(t *testing.T) {
		cs := newTestChatServer(t, &store.MockMessageRepository{}, &identity.MockDirectory{}, &stats.MockStatsUpdater{})
		c := newTestClient(t, cs, "conn-1")

		c.dispatch(&ClientEvent{
			Id:    9,
			Event: EventLogin,
			Data:  []byte(`{"username":`),
		})

		evt := <-c.send
		require.Equal(t, EventAck, evt.Event, "expected an ack")
		assert.Equal(t, 9, evt.Id, "expected ack to carry the request id")
		ack, ok := evt.Data.(*Ack)
		require.True(t, ok, "expected Ack payload")
		assert.Equal(t, "invalid message format", ack.Error, "expected error message to match")
	})

	t.Run("unknown event is ignored", func(t *testing.T) {
		cs := newTestChatServer(t, &store.MockMessageRepository{}, &identity.MockDirectory{}, &stats.MockStatsUpdater{})
		c := newTestClient(t, cs, "conn-1")

		c.dispatch(&ClientEvent{Event: "no:such:event", Data: []byte(`{}`)})

		assert.Len(t, c.send, 0, "expected no response for an unknown event")
	})
}

func TestClient_queueMessage(t *testing.T) {
	cs := newTestChatServer(t, &store.MockMessageRepository{}, &identity.MockDirectory{}, &stats.MockStatsUpdater{})
	c := newTestClient(t, cs, "conn-1")

	ok := c.queueMessage(AckOk(1))
	assert.True(t, ok, "expected event to be queued")
	assert.Len(t, c.send, 1, "expected one queued event")

	// fill the channel to force a drop
	for len(c.send) < cap(c.send) {
		c.send <- AckOk(1)
	}

	ok = c.queueMessage(AckOk(2))
	assert.False(t, ok, "expected event to be dropped when channel is full")
}

func TestClient_stopClient(t *testing.T) {
	cs := newTestChatServer(t, &store.MockMessageRepository{}, &identity.MockDirectory{}, &stats.MockStatsUpdater{})
	c := newTestClient(t, cs, "conn-1")

	c.stopClient()

	select {
	case <-c.stop:
	default:
		t.Fatal("expected stop channel to be closed")
	}

	// a second call must not panic on the closed channel
	c.stopClient()
}
