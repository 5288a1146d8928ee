package chatws

import (
	"context"
	"encoding/json"
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/j-planelles/projecte-dam/internal/models"
)

type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	userID    uuid.UUID
	isTrainer bool
	send      chan []byte
}

type sender interface {
	SendFromUser(ctx context.Context, userID uuid.UUID, content string) (*models.Message, error)
	SendFromTrainer(ctx context.Context, trainerID, userID uuid.UUID, content string) (*models.Message, error)
}

// Message is the wire format on the chat socket, both directions.
type Message struct {
	Type            string `json:"type"`
	UserID          string `json:"user_uuid,omitempty"`
	TrainerID       string `json:"trainer_uuid,omitempty"`
	Content         string `json:"content"`
	Timestamp       int64  `json:"timestamp,omitempty"`
	IsSentByTrainer bool   `json:"is_sent_by_trainer"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, isTrainer bool) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		userID:    userID,
		isTrainer: isTrainer,
		send:      make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// deliver fans the message out to both parties of the pair.
func (h *Hub) deliver(message *Message) {
	encoded, err := json.Marshal(message)
	if err != nil {
		log.Printf("chat hub encode message: %v", err)
		return
	}

	if userID, err := uuid.Parse(message.UserID); err == nil {
		h.sendToIdentity(userID, encoded)
	}
	if trainerID, err := uuid.Parse(message.TrainerID); err == nil && message.TrainerID != message.UserID {
		h.sendToIdentity(trainerID, encoded)
	}
}

func (h *Hub) sendToIdentity(id uuid.UUID, payload []byte) {
	set, ok := h.clients[id]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, id)
	}
}

// ReadPump consumes incoming frames until the socket dies. Trainers must
// name the trainee the message is for; users always talk to their
// current trainer.
func (c *Client) ReadPump(service sender) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type    string `json:"type"`
			UserID  string `json:"user_uuid"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			writeError(c, "invalid message payload")
			continue
		}
		if incoming.Type != "message" {
			writeError(c, "unsupported message type")
			continue
		}

		var message *models.Message
		if c.isTrainer {
			traineeID, err := uuid.Parse(incoming.UserID)
			if err != nil {
				writeError(c, "invalid user id")
				continue
			}
			message, err = service.SendFromTrainer(context.Background(), c.userID, traineeID, incoming.Content)
			if err != nil {
				writeError(c, "failed to send message")
				continue
			}
		} else {
			message, err = service.SendFromUser(context.Background(), c.userID, incoming.Content)
			if err != nil {
				writeError(c, "failed to send message")
				continue
			}
		}

		c.hub.broadcast <- &Message{
			Type:            "message",
			UserID:          message.UserID.String(),
			TrainerID:       message.TrainerID.String(),
			Content:         message.Content,
			Timestamp:       message.Timestamp,
			IsSentByTrainer: message.IsSentByTrainer,
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func writeError(client *Client, message string) {
	payload, err := json.Marshal(Message{
		Type:    "error",
		Content: message,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		client.hub.Unregister(client)
	}
}
