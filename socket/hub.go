package socket

import (
	"encoding/json"
	"sync"

	"jsoncrud/pkg/logger"
)

const (
	CreatedType = "CREATED" // Record appended to a collection
	UpdatedType = "UPDATED" // Record merged with a partial update
	DeletedType = "DELETED" // Record removed

	CollectionUsers = "users"
	CollectionTodos = "todos"

	// allCollections is the room of clients that did not pick a collection.
	allCollections = ""
)

// Event describes one committed mutation.
type Event struct {
	Type       string          `json:"type"`
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
}

type Hub struct {
	Rooms      map[string]map[*Client]bool // collection -> clients
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Publish queues an event for delivery. It never blocks: when the queue is
// full or the hub is closed the event is dropped.
func (h *Hub) Publish(eventType, collection, id string, record any) {
	payload, err := json.Marshal(record)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s event for %s/%s: %v", eventType, collection, id, err)
		return
	}
	ev := Event{Type: eventType, Collection: collection, ID: id, Payload: payload}

	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.Broadcast <- ev:
	default:
		logger.Sugar.Warnf("Change feed queue is full, dropping %s event for %s/%s", eventType, collection, id)
	}
}

// ClientCount returns the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, clients := range h.Rooms {
		n += len(clients)
	}
	return n
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for room, clients := range h.Rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.Rooms, room)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.Collection] == nil {
				h.Rooms[client.Collection] = make(map[*Client]bool)
			}
			h.Rooms[client.Collection][client] = true
			h.mu.Unlock()
			logger.Sugar.Debugf("Feed client joined (collection=%q)", client.Collection)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast event: %v", err)
				continue
			}

			h.mu.Lock()
			for _, room := range []string{ev.Collection, allCollections} {
				for client := range h.Rooms[room] {
					select {
					case client.Send <- payload:
					default:
						// Lagging client: drop it rather than stall the feed.
						logger.Sugar.Warnf("Feed client send buffer is full. Unregistering.")
						h.removeLocked(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.Rooms[client.Collection][client]; !ok {
		return
	}
	delete(h.Rooms[client.Collection], client)
	close(client.Send)
	if len(h.Rooms[client.Collection]) == 0 {
		delete(h.Rooms, client.Collection)
	}
}
