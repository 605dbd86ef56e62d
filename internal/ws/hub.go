package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Prabhashwara2003/multiplayer-matchmaking-service/pkg/types"
)

// Hub fans match lifecycle events out to every connected client.
type Hub struct {
	register  chan *websocket.Conn
	broadcast chan types.Event
	clients   map[*websocket.Conn]bool
	upgrade   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		register:  make(chan *websocket.Conn),
		broadcast: make(chan types.Event, 64),
		clients:   map[*websocket.Conn]bool{},
		upgrade:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Run owns the client set; registration and broadcast both go through
// channels so no lock is needed.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case ev := <-h.broadcast:
			for c := range h.clients {
				if err := c.WriteJSON(ev); err != nil {
					log.Debug().Err(err).Msg("ws write failed, dropping client")
					c.Close()
					delete(h.clients, c)
				}
			}
		}
	}
}

func (h *Hub) Broadcast(ev types.Event) {
	select {
	case h.broadcast <- ev:
	default: // never block the engine on a full event buffer
	}
}

func ServeWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrade.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.register <- c
}
