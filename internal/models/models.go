package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the stored lifecycle state of an auction. It changes only
// through explicit updates; time-derived classifications are computed per
// read and never persisted.
type AuctionStatus string

const (
	AuctionDraft      AuctionStatus = "draft"
	AuctionLive       AuctionStatus = "live"
	AuctionEndingSoon AuctionStatus = "ending-soon"
	AuctionEnded      AuctionStatus = "ended"
	AuctionCancelled  AuctionStatus = "cancelled"
)

// LiveFeedItemStatus is the state of a single item within a live feed session.
type LiveFeedItemStatus string

const (
	ItemPending LiveFeedItemStatus = "pending"
	ItemActive  LiveFeedItemStatus = "active"
	ItemSold    LiveFeedItemStatus = "sold"
	ItemPassed  LiveFeedItemStatus = "passed"
)

// User represents a registered seller account
type User struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Name                *string   `json:"name,omitempty"`
	Email               *string   `json:"email,omitempty"`
	Avatar              *string   `json:"avatar,omitempty"`
	FacebookID          *string   `json:"facebook_id,omitempty"`
	FacebookAccessToken *string   `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FacebookGroup is a posting target registered by a user. Groups are
// deactivated, never hard-deleted.
type FacebookGroup struct {
	ID              string    `json:"id"`
	FacebookGroupID string    `json:"facebook_group_id"`
	Name            string    `json:"name"`
	MemberCount     *int      `json:"member_count,omitempty"`
	UserID          string    `json:"user_id"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Auction represents a single biddable item with a time window.
// CurrentBid never drops below StartingBid and BidCount matches the number
// of accepted bids referencing the auction.
type Auction struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	FacebookURL     *string         `json:"facebook_url,omitempty"`
	FacebookPostID  *string         `json:"facebook_post_id,omitempty"`
	StartingBid     decimal.Decimal `json:"starting_bid"`
	CurrentBid      decimal.Decimal `json:"current_bid"`
	MinIncrement    decimal.Decimal `json:"min_increment"`
	BidCount        int             `json:"bid_count"`
	Status          AuctionStatus   `json:"status"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	UserID          string          `json:"user_id"`
	FacebookGroupID *string         `json:"facebook_group_id,omitempty"`
	ImageURLs       []string        `json:"image_urls,omitempty"`
	IsLiveFeed      bool            `json:"is_live_feed"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Bid represents an accepted bid on an auction. Bids are immutable once
// created except for IsWinning, which only the settlement engine mutates.
type Bid struct {
	ID               string          `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	Bidder           string          `json:"bidder"`
	BidderFacebookID *string         `json:"bidder_facebook_id,omitempty"`
	AuctionID        string          `json:"auction_id"`
	UserID           *string         `json:"user_id,omitempty"`
	IsWinning        bool            `json:"is_winning"`
	CreatedAt        time.Time       `json:"created_at"`
}

// LiveFeedSession is an umbrella event auctioning a sequence of items one at
// a time.
type LiveFeedSession struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	UserID           string          `json:"user_id"`
	FacebookGroupID  *string         `json:"facebook_group_id,omitempty"`
	IsActive         bool            `json:"is_active"`
	CurrentItemIndex int             `json:"current_item_index"`
	BidIncrement     decimal.Decimal `json:"bid_increment"`
	ItemDuration     int             `json:"item_duration"` // seconds
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LiveFeedItem is a single item inside a live feed session, ordered by
// OrderIndex.
type LiveFeedItem struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	StartingBid decimal.Decimal    `json:"starting_bid"`
	CurrentBid  *decimal.Decimal   `json:"current_bid,omitempty"`
	SessionID   string             `json:"session_id"`
	OrderIndex  int                `json:"order_index"`
	Status      LiveFeedItemStatus `json:"status"`
	ImageURLs   []string           `json:"image_urls,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// UserSettings holds per-user notification toggles and auction defaults.
// One row per user, created lazily on first read.
type UserSettings struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	OutbidNotifications bool            `json:"outbid_notifications"`
	EndingNotifications bool            `json:"ending_notifications"`
	NewBidNotifications bool            `json:"new_bid_notifications"`
	DefaultMinIncrement decimal.Decimal `json:"default_min_increment"`
	DefaultDuration     int             `json:"default_duration"` // hours
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
