package events

import (
	"encoding/json"
	"log"

	"github.com/gorilla/websocket"
)

// Event is the payload broadcast to every member of a team room.
type Event struct {
	Action string `json:"action"`
	Team   string `json:"team"`
	Data   any    `json:"data,omitempty"`
}

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Team string
}

type teamMsg struct {
	Team string
	Data []byte
}

// Hub fans events out to websocket clients grouped by team. The team map is
// touched only by the Run goroutine, so it needs no locking.
type Hub struct {
	teams      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan teamMsg
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		teams:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan teamMsg),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			if h.teams[c.Team] == nil {
				h.teams[c.Team] = make(map[*Client]bool)
			}
			h.teams[c.Team][c] = true

		case c := <-h.unregister:
			if conns := h.teams[c.Team]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.Send)
			}

		case m := <-h.broadcast:
			for c := range h.teams[m.Team] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.teams[m.Team], c)
				}
			}
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Register(c *Client) {
	h.register <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast marshals the event and delivers it to the event's team room.
func (h *Hub) Broadcast(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", evt.Action, err)
		return
	}
	select {
	case h.broadcast <- teamMsg{Team: evt.Team, Data: data}:
	case <-h.done:
	}
}
