package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(id string) *Client {
	return &Client{
		ID:   id,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := newTestClient("c1")
	c.hub = hub

	hub.Register(c)
	hub.Join(c, "general")
	assert.Equal(t, 1, hub.Online("general"))

	hub.Unregister(c)
	assert.Equal(t, 0, hub.Online("general"))

	// second unregister is a no-op
	hub.Unregister(c)
	assert.Equal(t, 0, hub.Online("general"))
}

func TestHub_JoinIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient("c1")
	hub.Register(c)

	hub.Join(c, "general")
	hub.Join(c, "general")

	assert.Equal(t, 1, hub.Online("general"))
	assert.Equal(t, "general", hub.RoomOf(c))
}

func TestHub_JoinSwitchesRoom(t *testing.T) {
	hub := NewHub()
	c := newTestClient("c1")
	hub.Register(c)

	hub.Join(c, "general")
	hub.Join(c, "random")

	assert.Equal(t, 0, hub.Online("general"))
	assert.Equal(t, 1, hub.Online("random"))
	assert.Equal(t, "random", hub.RoomOf(c))
}

func TestHub_BroadcastRoom(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a")
	b := newTestClient("b")
	outsider := newTestClient("outsider")
	for _, c := range []*Client{a, b, outsider} {
		hub.Register(c)
	}
	hub.Join(a, "general")
	hub.Join(b, "general")
	hub.Join(outsider, "random")

	frame := []byte(`{"event":"chat message"}`)
	hub.BroadcastRoom("general", frame)

	assert.Equal(t, frame, <-a.send)
	assert.Equal(t, frame, <-b.send)
	select {
	case got := <-outsider.send:
		t.Fatalf("outsider received room broadcast: %s", got)
	default:
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a")
	b := newTestClient("b")
	hub.Register(a)
	hub.Register(b)
	hub.Join(a, "general")
	// b never joined a room but still gets global broadcasts

	frame := []byte(`{"event":"message deleted"}`)
	hub.BroadcastAll(frame)

	assert.Equal(t, frame, <-a.send)
	assert.Equal(t, frame, <-b.send)
}

func TestHub_BroadcastEmptyRoom(t *testing.T) {
	hub := NewHub()
	// broadcasting into a room nobody occupies must not panic
	hub.BroadcastRoom("ghost-town", []byte("hello"))
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub()
	slow := &Client{ID: "slow", send: make(chan []byte)} // no buffer
	slow.hub = hub
	hub.Register(slow)
	hub.Join(slow, "general")

	hub.BroadcastRoom("general", []byte("frame"))

	// the drop happens on a separate goroutine
	assert.Eventually(t, func() bool {
		return hub.Online("general") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestClient_TrySendAfterCloseReturnsFalse(t *testing.T) {
	c := newTestClient("c1")
	c.closeSend()

	assert.False(t, c.trySend([]byte("late")))
	// close stays idempotent
	c.closeSend()
}

func TestClient_TrySendRacingClose(t *testing.T) {
	// senders hammering the channel while it is being closed must never
	// panic; once closed every trySend reports false
	c := newTestClient("c1")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			c.trySend([]byte("x"))
		}
	}()
	c.closeSend()
	<-done

	assert.False(t, c.trySend([]byte("x")))
}
