// Package livematch broadcasts selector VM match/unmatch events to
// connected websocket clients, for live inspection of a selector set
// while developing it. It sits entirely outside the VM: it only consumes
// selectorvm's public Match/Unmatch-shaped events.
package livematch

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one match or unmatch report, serialized as JSON over the
// websocket connection.
type Event struct {
	Kind        string `json:"kind"` // "match" or "unmatch"
	Payload     string `json:"payload"`
	WithContent bool   `json:"withContent,omitempty"`
}

// Hub fans Event values out to every connected client.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns a ready, empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("livematch: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("livematch: client closed unexpectedly: %v", err)
			}
			return
		}
	}
}

// Broadcast sends ev to every currently connected client, dropping
// clients it fails to write to.
func (h *Hub) Broadcast(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("livematch: marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		w, err := conn.NextWriter(websocket.TextMessage)
		if err != nil {
			delete(h.clients, conn)
			continue
		}
		if _, err := w.Write(body); err != nil {
			delete(h.clients, conn)
		}
		w.Close()
	}
}
