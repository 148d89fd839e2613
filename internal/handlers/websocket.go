package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // bidders connect from the facebook embed, any origin
	},
}

// wsClient wraps a websocket connection behind the hub's Subscriber
// interface. Writes are serialized; gorilla connections do not allow
// concurrent writers.
type wsClient struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func (c *wsClient) Send(msg services.WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return auctionerrors.ErrChannelUnavailable
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.closed = true
		return auctionerrors.ErrChannelUnavailable
	}
	return nil
}

func (c *wsClient) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.conn.Close()
}

// clientMessage is what subscribers send: subscribe / unsubscribe plus the
// auction (or live feed session) id they care about.
type clientMessage struct {
	Type      string `json:"type"`
	AuctionID string `json:"auctionId"`
}

// WebSocketHandler handles live-update WebSocket connections
type WebSocketHandler struct {
	hub *services.WSHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket handles GET /ws. Connections are anonymous; a client
// only receives events for auctions it has subscribed to.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &wsClient{conn: conn}
	defer func() {
		h.hub.Disconnect(client)
		client.close()
	}()

	log.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client disconnected")
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Msg("Ignoring malformed WebSocket message")
			continue
		}
		if msg.AuctionID == "" {
			continue
		}

		switch msg.Type {
		case "subscribe":
			h.hub.Subscribe(client, msg.AuctionID)
		case "unsubscribe":
			h.hub.Unsubscribe(client, msg.AuctionID)
		}
	}
}
