package services

import (
	"sync"
	"testing"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/models"

	"github.com/stretchr/testify/require"
)

// fakeSubscriber collects delivered messages; it can be flipped to a closed
// state where Send fails the way a dropped connection would.
type fakeSubscriber struct {
	mu       sync.Mutex
	messages []WSMessage
	closed   bool
}

func (f *fakeSubscriber) Send(msg WSMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return auctionerrors.ErrChannelUnavailable
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeSubscriber) received() []WSMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]WSMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

func TestSubscribe_AcksAndScopesDelivery(t *testing.T) {
	hub := NewWSHub()
	subA := &fakeSubscriber{}
	subB := &fakeSubscriber{}

	hub.Subscribe(subA, "auction-1")
	hub.Subscribe(subB, "auction-2")

	require.Equal(t, EventSubscribed, subA.received()[0].Type)
	require.Equal(t, "auction-1", subA.received()[0].AuctionID)

	bid := &models.Bid{ID: "bid-1", AuctionID: "auction-1"}
	hub.PublishNewBid("auction-1", bid)

	msgsA := subA.received()
	require.Len(t, msgsA, 2)
	require.Equal(t, EventNewBid, msgsA[1].Type)
	require.Equal(t, "bid-1", msgsA[1].Bid.ID)

	// auction-2's subscriber only saw its ack.
	require.Len(t, subB.received(), 1)
}

func TestSubscribe_Idempotent(t *testing.T) {
	hub := NewWSHub()
	sub := &fakeSubscriber{}

	hub.Subscribe(sub, "auction-1")
	hub.Subscribe(sub, "auction-1")
	require.Equal(t, 1, hub.subscriberCount("auction-1"))

	hub.PublishAuctionUpdate("auction-1", map[string]int{"bid_count": 3})

	// Two acks plus exactly one update.
	require.Len(t, sub.received(), 3)
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	hub := NewWSHub()
	sub := &fakeSubscriber{}

	hub.Subscribe(sub, "auction-1")
	hub.Unsubscribe(sub, "auction-1")
	require.Zero(t, hub.subscriberCount("auction-1"))

	hub.PublishNewBid("auction-1", &models.Bid{ID: "bid-1"})
	require.Len(t, sub.received(), 1) // just the ack

	// Unsubscribing again, or from an unknown auction, is harmless.
	hub.Unsubscribe(sub, "auction-1")
	hub.Unsubscribe(sub, "never-subscribed")
}

func TestDisconnect_RemovesAllSubscriptions(t *testing.T) {
	hub := NewWSHub()
	gone := &fakeSubscriber{}
	stays := &fakeSubscriber{}

	hub.Subscribe(gone, "auction-1")
	hub.Subscribe(gone, "auction-2")
	hub.Subscribe(stays, "auction-1")

	hub.Disconnect(gone)
	require.Equal(t, 1, hub.subscriberCount("auction-1"))
	require.Zero(t, hub.subscriberCount("auction-2"))

	hub.PublishNewBid("auction-1", &models.Bid{ID: "bid-1"})
	require.Len(t, gone.received(), 2) // the two acks, nothing after
	require.Len(t, stays.received(), 2)
}

func TestPublish_SkipsClosedSubscribers(t *testing.T) {
	hub := NewWSHub()
	open := &fakeSubscriber{}
	closed := &fakeSubscriber{}

	hub.Subscribe(open, "auction-1")
	hub.Subscribe(closed, "auction-1")
	closed.mu.Lock()
	closed.closed = true
	closed.mu.Unlock()

	// Must not panic or block; the open subscriber still gets the event.
	hub.PublishAuctionUpdate("auction-1", nil)
	require.Len(t, open.received(), 2)
	require.Len(t, closed.received(), 1)
}
