package websocket

import (
	"sync"
	"time"

	"solar-proposal-backend/config"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessageType string

const (
	MessageTypeProposalCreated  MessageType = "PROPOSAL_CREATED"
	MessageTypeProposalDeleted  MessageType = "PROPOSAL_DELETED"
	MessageTypeProposalRendered MessageType = "PROPOSAL_RENDERED"
	MessageTypeEmailQueued      MessageType = "PROPOSAL_EMAIL_QUEUED"
	MessageTypeSubscribe        MessageType = "SUBSCRIBE"
	MessageTypeUnsubscribe      MessageType = "UNSUBSCRIBE"
	MessageTypeError            MessageType = "ERROR"
)

type WebSocketMessage struct {
	Type       MessageType `json:"type"`
	Payload    interface{} `json:"payload"`
	Timestamp  time.Time   `json:"timestamp"`
	ProposalID string      `json:"proposalId,omitempty"`
}

// Client is one connected sales user. A client with no proposal
// subscriptions receives every event; otherwise only events of the
// proposals it follows plus created/deleted notices.
type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Conn      *websocket.Conn
	Hub       *Hub
	Send      chan WebSocketMessage
	Proposals map[string]bool
	mu        sync.RWMutex
	closed    bool
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.mu.Lock()
		client.closed = true
		close(client.Send)
		client.mu.Unlock()
	}
}

// Broadcast queues an event without blocking the caller. Events are dropped
// when the hub is saturated; HTTP handlers must never wait on sockets.
func (h *Hub) Broadcast(message WebSocketMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- message:
	default:
		config.Logger.Warn("WebSocket hub saturated, event dropped", zap.String("type", string(message.Type)))
	}
}

// Publish is a shorthand for proposal events.
func (h *Hub) Publish(kind MessageType, proposalID string, payload interface{}) {
	h.Broadcast(WebSocketMessage{Type: kind, ProposalID: proposalID, Payload: payload})
}

func (h *Hub) deliver(message WebSocketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.wants(message) {
			continue
		}
		select {
		case client.Send <- message:
		default:
			h.remove(client)
		}
	}
}

func (c *Client) wants(message WebSocketMessage) bool {
	switch message.Type {
	case MessageTypeProposalCreated, MessageTypeProposalDeleted:
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Proposals) == 0 || c.Proposals[message.ProposalID]
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) Subscribe(proposalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Proposals == nil {
		c.Proposals = make(map[string]bool)
	}
	c.Proposals[proposalID] = true
}

func (c *Client) Unsubscribe(proposalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Proposals, proposalID)
}

func (c *Client) IsSubscribed(proposalID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Proposals[proposalID]
}
