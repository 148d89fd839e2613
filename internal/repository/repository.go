package repository

import (
	"context"
	"time"

	"groupbid-backend/internal/models"

	"github.com/shopspring/decimal"
)

// The repositories below are the persistence contract for the service layer.
// Implementations assign ids, stamp created_at/updated_at, map missing rows
// to auctionerrors.ErrNotFound and uniqueness violations to
// auctionerrors.ErrDuplicateKey. Deletes are idempotent and report whether a
// row was removed.

// CreateUserInput holds the caller-supplied fields for a new user.
type CreateUserInput struct {
	Username   string
	Name       *string
	Email      *string
	Avatar     *string
	FacebookID *string
}

// UserUpdate holds optional field changes for a user. Nil fields are left
// unchanged. Identity fields (id, username) cannot be altered.
type UserUpdate struct {
	Name                *string
	Email               *string
	Avatar              *string
	FacebookID          *string
	FacebookAccessToken *string
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFacebookID(ctx context.Context, facebookID string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error)
}

// CreateAuctionInput holds the caller-supplied fields for a new auction.
// CurrentBid is initialized to StartingBid, BidCount to 0, Status to draft.
type CreateAuctionInput struct {
	Title           string
	Description     *string
	FacebookURL     *string
	StartingBid     decimal.Decimal
	MinIncrement    decimal.Decimal
	StartTime       time.Time
	EndTime         time.Time
	UserID          string
	FacebookGroupID *string
	ImageURLs       []string
	IsLiveFeed      bool
}

// AuctionFilter narrows and caps auction listings. Zero values mean "no
// constraint". Results are ordered newest-created-first.
type AuctionFilter struct {
	UserID string
	Status models.AuctionStatus
	Limit  int
}

// AuctionUpdate holds optional field changes for an auction. The settlement
// fields (CurrentBid, BidCount) are written only by the bid settlement
// engine.
type AuctionUpdate struct {
	Title          *string
	Description    *string
	FacebookURL    *string
	FacebookPostID *string
	CurrentBid     *decimal.Decimal
	BidCount       *int
	Status         *models.AuctionStatus
	ImageURLs      *[]string
}

// AuctionRepository defines auction persistence operations.
type AuctionRepository interface {
	CreateAuction(ctx context.Context, in CreateAuctionInput) (*models.Auction, error)
	GetAuction(ctx context.Context, id string) (*models.Auction, error)
	ListAuctions(ctx context.Context, f AuctionFilter) ([]models.Auction, error)
	UpdateAuction(ctx context.Context, id string, upd AuctionUpdate) (*models.Auction, error)
	DeleteAuction(ctx context.Context, id string) (bool, error)
}

// CreateBidInput holds the fields for a new bid record. IsWinning is set by
// the settlement engine, which is the only writer of that flag.
type CreateBidInput struct {
	Amount           decimal.Decimal
	Bidder           string
	BidderFacebookID *string
	AuctionID        string
	UserID           *string
	IsWinning        bool
}

// BidRepository defines bid persistence operations. Listings are ordered
// newest-first.
type BidRepository interface {
	CreateBid(ctx context.Context, in CreateBidInput) (*models.Bid, error)
	GetBid(ctx context.Context, id string) (*models.Bid, error)
	ListBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error)
	ListBidsForUser(ctx context.Context, userID string) ([]models.Bid, error)
	// SettleBid records the bid as the sole winning bid for its auction and
	// advances the auction's current bid and bid count, as one atomic store
	// operation: concurrent readers observe the pre- or post-settlement
	// state, never an intermediate one. A missing auction fails with
	// ErrNotFound and leaves no trace.
	SettleBid(ctx context.Context, in CreateBidInput) (*models.Bid, *models.Auction, error)
}

// CreateGroupInput holds the caller-supplied fields for a new facebook group
// registration.
type CreateGroupInput struct {
	FacebookGroupID string
	Name            string
	MemberCount     *int
	UserID          string
}

// GroupUpdate holds optional field changes for a facebook group.
type GroupUpdate struct {
	Name        *string
	MemberCount *int
	IsActive    *bool
}

// GroupRepository defines facebook group persistence operations.
type GroupRepository interface {
	CreateGroup(ctx context.Context, in CreateGroupInput) (*models.FacebookGroup, error)
	GetGroup(ctx context.Context, id string) (*models.FacebookGroup, error)
	// ListActiveGroupsForUser returns the user's active groups ordered by name.
	ListActiveGroupsForUser(ctx context.Context, userID string) ([]models.FacebookGroup, error)
	UpdateGroup(ctx context.Context, id string, upd GroupUpdate) (*models.FacebookGroup, error)
}

// CreateSessionInput holds the caller-supplied fields for a new live feed
// session.
type CreateSessionInput struct {
	Name            string
	UserID          string
	FacebookGroupID *string
	BidIncrement    decimal.Decimal
	ItemDuration    int
}

// SessionUpdate holds optional field changes for a live feed session.
type SessionUpdate struct {
	Name             *string
	IsActive         *bool
	CurrentItemIndex *int
	BidIncrement     *decimal.Decimal
	ItemDuration     *int
}

// CreateItemInput holds the caller-supplied fields for a new live feed item.
type CreateItemInput struct {
	Name        string
	Description *string
	StartingBid decimal.Decimal
	SessionID   string
	OrderIndex  int
	ImageURLs   []string
}

// ItemUpdate holds optional field changes for a live feed item.
type ItemUpdate struct {
	Name        *string
	Description *string
	CurrentBid  *decimal.Decimal
	OrderIndex  *int
	Status      *models.LiveFeedItemStatus
	ImageURLs   *[]string
}

// LiveFeedRepository defines live feed session and item persistence
// operations. Items are listed by order index ascending.
type LiveFeedRepository interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*models.LiveFeedSession, error)
	GetSession(ctx context.Context, id string) (*models.LiveFeedSession, error)
	ListSessionsForUser(ctx context.Context, userID string) ([]models.LiveFeedSession, error)
	UpdateSession(ctx context.Context, id string, upd SessionUpdate) (*models.LiveFeedSession, error)
	DeleteSession(ctx context.Context, id string) (bool, error)

	CreateItem(ctx context.Context, in CreateItemInput) (*models.LiveFeedItem, error)
	GetItem(ctx context.Context, id string) (*models.LiveFeedItem, error)
	ListItemsForSession(ctx context.Context, sessionID string) ([]models.LiveFeedItem, error)
	UpdateItem(ctx context.Context, id string, upd ItemUpdate) (*models.LiveFeedItem, error)
	DeleteItem(ctx context.Context, id string) (bool, error)
}

// CreateSettingsInput holds the fields for a new settings row.
type CreateSettingsInput struct {
	UserID              string
	OutbidNotifications bool
	EndingNotifications bool
	NewBidNotifications bool
	DefaultMinIncrement decimal.Decimal
	DefaultDuration     int
}

// SettingsUpdate holds optional field changes for user settings.
type SettingsUpdate struct {
	OutbidNotifications *bool
	EndingNotifications *bool
	NewBidNotifications *bool
	DefaultMinIncrement *decimal.Decimal
	DefaultDuration     *int
}

// SettingsRepository defines user settings persistence operations. At most
// one row exists per user.
type SettingsRepository interface {
	CreateSettings(ctx context.Context, in CreateSettingsInput) (*models.UserSettings, error)
	GetSettingsForUser(ctx context.Context, userID string) (*models.UserSettings, error)
	UpdateSettingsForUser(ctx context.Context, userID string, upd SettingsUpdate) (*models.UserSettings, error)
}
