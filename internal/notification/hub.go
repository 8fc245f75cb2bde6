// internal/notification/hub.go

package notification

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Configure origin checking in production
		return true
	},
}

// Hub keeps track of connected clients and routes realtime events to them.
// Users without an open connection simply miss the event.
type Hub struct {
	clients    map[int64]*Client
	direct     chan Message
	fanout     chan Message
	register   chan *Client
	unregister chan *Client
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	userID int64
}

// Message is the wire format for realtime events
type Message struct {
	Type   string      `json:"type"`
	UserID int64       `json:"user_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		direct:     make(chan Message),
		fanout:     make(chan Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			log.Printf("User %d connected", client.userID)

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
				log.Printf("User %d disconnected", client.userID)
			}

		case message := <-h.direct:
			if client, ok := h.clients[message.UserID]; ok {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client.userID)
				}
			}

		case message := <-h.fanout:
			for userID, client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, userID)
				}
			}
		}
	}
}

// Send delivers a message to one user if they are connected
func (h *Hub) Send(userID int64, msgType string, data interface{}) {
	h.direct <- Message{Type: msgType, UserID: userID, Data: data}
}

// SendAll delivers a message to every connected user
func (h *Hub) SendAll(msgType string, data interface{}) {
	h.fanout <- Message{Type: msgType, Data: data}
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	// Set by the auth middleware
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Message, 256),
		userID: userID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.WriteJSON(message)
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
