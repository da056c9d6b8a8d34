package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastLlegaATodos(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &Client{hub: hub, send: make(chan []byte, 4)}
	c2 := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.register <- c1
	hub.register <- c2

	hub.Broadcast(Event{Type: EventVentaRegistrada, Payload: map[string]interface{}{
		"numero_ticket": 42,
	}})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, EventVentaRegistrada, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("el cliente no recibió el evento")
		}
	}
}

func TestHub_UnregisterCierraElCanal(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	select {
	case _, open := <-c.send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("el canal no se cerró")
	}

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_ClienteLentoEsDesconectado(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// A zero-capacity channel means the first broadcast can't be delivered;
	// the hub must drop the client instead of blocking.
	slow := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- slow

	hub.Broadcast(Event{Type: EventStockBajo, Payload: nil})

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, hub.ClientCount())
}
