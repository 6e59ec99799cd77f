package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Message represents a WebSocket message pushed to a player's followers.
type Message struct {
	PlayerID string           `json:"player_id"`
	Round    *engine.Snapshot `json:"round,omitempty"`
	Event    string           `json:"event,omitempty"`
	Data     interface{}      `json:"data,omitempty"`
}

// Client represents a WebSocket client following one player's round
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	playerID string
}

// Hub maintains the set of active clients and broadcasts round updates.
// Each player has a set of followers; all hub state is owned by the Run
// goroutine, so broadcasts go through the channel rather than touching the
// maps directly.
type Hub struct {
	// Registered clients by player ID
	players map[string]map[*Client]bool

	// Outbound messages to followers
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		players:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		playerID: playerID,
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastRound pushes a round snapshot to everyone following the player.
func (h *Hub) BroadcastRound(playerID string, round engine.Snapshot) {
	h.broadcast <- &Message{
		PlayerID: playerID,
		Round:    &round,
		Event:    "round_update",
	}
}

// BroadcastEvent sends a custom event to everyone following the player.
func (h *Hub) BroadcastEvent(playerID string, event string, data interface{}) {
	h.broadcast <- &Message{
		PlayerID: playerID,
		Event:    event,
		Data:     data,
	}
}

// registerClient adds a client to a player's follower set
func (h *Hub) registerClient(client *Client) {
	if h.players[client.playerID] == nil {
		h.players[client.playerID] = make(map[*Client]bool)
	}
	h.players[client.playerID][client] = true

	log.Printf("Client registered for player %s (total clients: %d)",
		client.playerID, len(h.players[client.playerID]))
}

// unregisterClient removes a client from a player's follower set
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.players[client.playerID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty follower sets
			if len(clients) == 0 {
				delete(h.players, client.playerID)
			}

			log.Printf("Client unregistered from player %s (remaining clients: %d)",
				client.playerID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients following a player
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.players[message.PlayerID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, close it
				h.unregisterClient(client)
			}
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// We don't process incoming messages from clients currently
		// Just keep the connection alive
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
