// Package ws pushes store events (sales, cash movements, stock alerts) to
// connected terminals so every register sees the same state in real time.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Event types broadcast by the hub.
const (
	EventVentaRegistrada = "venta.registrada"
	EventVentaAnulada    = "venta.anulada"
	EventTurnoAbierto    = "caja.turno_abierto"
	EventTurnoCerrado    = "caja.turno_cerrado"
	EventMovimientoCaja  = "caja.movimiento"
	EventStockBajo       = "stock.bajo"
)

// Event is a WebSocket message broadcast to every connected terminal.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// A store has a single room: every terminal sees every event.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast marshals the event once and fans it out to every client.
// Never blocks the caller; a full hub channel drops the event.
func (h *Hub) Broadcast(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("ws: failed to marshal event")
		return
	}
	select {
	case h.broadcast <- message:
	default:
		log.Warn().Str("type", event.Type).Msg("ws: broadcast channel full, event dropped")
	}
}

// ClientCount returns the number of connected terminals (for health checks).
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
