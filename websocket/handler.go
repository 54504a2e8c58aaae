package websocket

import (
	"errors"
	"time"

	"solar-proposal-backend/config"
	"solar-proposal-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

var (
	errClientClosed = errors.New("client is disconnected")
	errSendFull     = errors.New("client send channel is full")
)

type AuthService interface {
	VerifyToken(token string) (*token.Payload, error)
}

// WsHandler upgrades authenticated requests into hub clients.
type WsHandler struct {
	hub  *Hub
	auth AuthService
}

func NewWsHandler(hub *Hub, auth AuthService) *WsHandler {
	return &WsHandler{hub: hub, auth: auth}
}

func wsError(c *fiber.Ctx, status int, message, detail string) error {
	return c.Status(status).JSON(fiber.Map{"message": message, "error": detail})
}

// HandleWebSocket checks the access cookie and the optional ?proposal=
// subscription before the upgrade, so failures still get a JSON body.
func (h *WsHandler) HandleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	accessToken := c.Cookies("access_token")
	if accessToken == "" {
		config.Logger.Warn("Proposal feed requested without access token")
		return wsError(c, fiber.StatusUnauthorized, "Unauthorized", "Authentication required")
	}
	payload, err := h.auth.VerifyToken(accessToken)
	if err != nil {
		config.Logger.Warn("Proposal feed rejected token", zap.Error(err))
		return wsError(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
	}

	initial := c.Query("proposal")
	if initial != "" {
		if _, err := uuid.Parse(initial); err != nil {
			return wsError(c, fiber.StatusBadRequest, "Invalid request", "Invalid proposal ID format")
		}
	}

	return websocket.New(func(conn *websocket.Conn) {
		client := newClient(h.hub, conn, payload.UserID)
		if initial != "" {
			client.Subscribe(initial)
		}
		h.hub.register <- client

		config.Logger.Info("Proposal feed connected",
			zap.String("clientID", client.ID.String()),
			zap.String("userID", client.UserID.String()),
			zap.String("proposalID", initial),
		)

		go client.writePump()
		client.readPump()
	})(c)
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:        uuid.New(),
		UserID:    userID,
		Conn:      conn,
		Hub:       hub,
		Send:      make(chan WebSocketMessage, sendBuffer),
		Proposals: make(map[string]bool),
	}
}

func (c *Client) log() *zap.Logger {
	return config.Logger.With(zap.String("clientID", c.ID.String()))
}

// readPump applies SUBSCRIBE/UNSUBSCRIBE frames until the peer goes away.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
		c.log().Info("Proposal feed disconnected", zap.String("userID", c.UserID.String()))
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg WebSocketMessage
		err := c.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log().Warn("Proposal feed closed unexpectedly", zap.Error(err))
			}
			return
		}

		if msg.Type != MessageTypeSubscribe && msg.Type != MessageTypeUnsubscribe {
			c.log().Warn("Unknown proposal feed message", zap.String("type", string(msg.Type)))
			c.sendError("Unknown message type: " + string(msg.Type))
			continue
		}
		c.handleSubscription(msg)
	}
}

func (c *Client) handleSubscription(msg WebSocketMessage) {
	if _, err := uuid.Parse(msg.ProposalID); err != nil {
		c.sendError("Invalid proposal ID format")
		return
	}

	switch msg.Type {
	case MessageTypeSubscribe:
		c.Subscribe(msg.ProposalID)
	case MessageTypeUnsubscribe:
		c.Unsubscribe(msg.ProposalID)
	}
	c.log().Debug("Proposal subscription changed",
		zap.String("type", string(msg.Type)),
		zap.String("proposalID", msg.ProposalID),
	)
}

func (c *Client) write(messageType int, data []byte) error {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, data)
}

// writePump drains Send and pings the peer. A closed Send ends the
// connection with a close frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log().Debug("Proposal feed write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log().Debug("Proposal feed ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) sendError(message string) {
	_ = c.SendMessage(WebSocketMessage{
		Type:      MessageTypeError,
		Payload:   map[string]interface{}{"message": message},
		Timestamp: time.Now(),
	})
}

// SendMessage queues msg without blocking.
func (c *Client) SendMessage(msg WebSocketMessage) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.Send <- msg:
		return nil
	default:
		return errSendFull
	}
}
