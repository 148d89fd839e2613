package services

import (
	"sync"

	"groupbid-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// WebSocket event kinds emitted to subscribers.
const (
	EventSubscribed    = "subscribed"
	EventAuctionUpdate = "auction_update"
	EventNewBid        = "new_bid"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	AuctionID string      `json:"auctionId,omitempty"`
	Message   string      `json:"message,omitempty"`
	Bid       *models.Bid `json:"bid,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Subscriber is a live connection the hub can deliver messages to. Send
// reports auctionerrors.ErrChannelUnavailable once the connection is no
// longer open; the hub treats that as a skip, never a failure.
type Subscriber interface {
	Send(msg WSMessage) error
}

// WSHub fans auction events out to the connections subscribed to each
// auction id.
type WSHub struct {
	mu            sync.RWMutex
	subscriptions map[string]map[Subscriber]struct{}
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		subscriptions: make(map[string]map[Subscriber]struct{}),
	}
}

// Subscribe adds the connection to the auction's subscriber set and
// acknowledges it. Subscribing twice has no additional effect beyond the
// repeated acknowledgement.
func (h *WSHub) Subscribe(sub Subscriber, auctionID string) {
	h.mu.Lock()
	set, ok := h.subscriptions[auctionID]
	if !ok {
		set = make(map[Subscriber]struct{})
		h.subscriptions[auctionID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	if err := sub.Send(WSMessage{Type: EventSubscribed, AuctionID: auctionID}); err != nil {
		log.Debug().Err(err).Str("auction_id", auctionID).Msg("Failed to ack subscription")
	}
}

// Unsubscribe removes the connection from the auction's subscriber set,
// dropping the set entirely once it is empty. Unsubscribing a connection
// that is not subscribed is a no-op.
func (h *WSHub) Unsubscribe(sub Subscriber, auctionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscriptions[auctionID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscriptions, auctionID)
	}
}

// Disconnect removes the connection from every auction it subscribed to.
// Called from the connection's close path so clients need not unsubscribe
// explicitly.
func (h *WSHub) Disconnect(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for auctionID, set := range h.subscriptions {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subscriptions, auctionID)
		}
	}
}

// PublishNewBid sends a new_bid event to every connection subscribed to the
// auction.
func (h *WSHub) PublishNewBid(auctionID string, bid *models.Bid) {
	h.publish(auctionID, WSMessage{Type: EventNewBid, AuctionID: auctionID, Bid: bid})
}

// PublishAuctionUpdate sends an auction_update event carrying an auction
// snapshot (or partial) to every connection subscribed to the auction.
func (h *WSHub) PublishAuctionUpdate(auctionID string, data interface{}) {
	h.publish(auctionID, WSMessage{Type: EventAuctionUpdate, AuctionID: auctionID, Data: data})
}

// publish delivers the message best-effort: connections that are no longer
// open are skipped and reaped by their own close callback.
func (h *WSHub) publish(auctionID string, msg WSMessage) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subscriptions[auctionID]))
	for sub := range h.subscriptions[auctionID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Send(msg); err != nil {
			log.Debug().
				Err(err).
				Str("auction_id", auctionID).
				Str("type", msg.Type).
				Msg("Skipping unreachable subscriber")
		}
	}
}

// subscriberCount reports how many connections are subscribed to the
// auction.
func (h *WSHub) subscriberCount(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[auctionID])
}
