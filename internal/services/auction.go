package services

import (
	"context"
	"fmt"
	"time"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// hotBidThreshold is the bid count above which an auction is displayed as
// "hot" rather than "live".
const hotBidThreshold = 20

// endingSoonWindow is the time-to-end below which an auction is classified
// as ending soon.
const endingSoonWindow = time.Hour

// DisplayStatus is a presentational classification computed per read. It is
// distinct from the stored lifecycle status and is never persisted.
type DisplayStatus string

const (
	DisplayLive       DisplayStatus = "live"
	DisplayEndingSoon DisplayStatus = "ending-soon"
	DisplayHot        DisplayStatus = "hot"
)

// DashboardStats summarizes a user's auction activity at a point in time.
type DashboardStats struct {
	ActiveAuctions    int             `json:"active_auctions"`
	TotalBidsToday    int             `json:"total_bids_today"`
	HighestCurrentBid decimal.Decimal `json:"highest_current_bid"`
	EndingInOneHour   int             `json:"ending_in_one_hour"`
}

// AuctionService handles auction lifecycle and derived read-only views.
type AuctionService struct {
	auctionRepo repository.AuctionRepository
	bidRepo     repository.BidRepository
	clock       clock.Clock
}

// NewAuctionService creates a new auction service
func NewAuctionService(auctionRepo repository.AuctionRepository, bidRepo repository.BidRepository, clk clock.Clock) *AuctionService {
	return &AuctionService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		clock:       clk,
	}
}

// CreateAuctionInput holds the fields for a new auction.
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

// CreateAuction validates and stores a new draft auction.
func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (*models.Auction, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("service: %w - title is required", auctionerrors.ErrValidation)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("service: %w - user id is required", auctionerrors.ErrValidation)
	}
	if in.StartingBid.IsNegative() {
		return nil, fmt.Errorf("service: %w - starting bid must not be negative", auctionerrors.ErrValidation)
	}
	if !in.MinIncrement.IsPositive() {
		return nil, fmt.Errorf("service: %w - minimum increment must be positive", auctionerrors.ErrValidation)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("service: %w - end time must be after start time", auctionerrors.ErrValidation)
	}

	auction, err := s.auctionRepo.CreateAuction(ctx, repository.CreateAuctionInput{
		Title:           in.Title,
		Description:     in.Description,
		FacebookURL:     in.FacebookURL,
		StartingBid:     in.StartingBid,
		MinIncrement:    in.MinIncrement,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		UserID:          in.UserID,
		FacebookGroupID: in.FacebookGroupID,
		ImageURLs:       in.ImageURLs,
		IsLiveFeed:      in.IsLiveFeed,
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to create auction: %w", err)
	}
	return auction, nil
}

// GetAuction retrieves an auction by id.
func (s *AuctionService) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	auction, err := s.auctionRepo.GetAuction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return auction, nil
}

// ListAuctions returns auctions matching the filter, newest first.
func (s *AuctionService) ListAuctions(ctx context.Context, f repository.AuctionFilter) ([]models.Auction, error) {
	auctions, err := s.auctionRepo.ListAuctions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// UpdateAuction applies an explicit update, including lifecycle status
// transitions. Settlement fields are owned by the bid service and are not
// accepted here.
func (s *AuctionService) UpdateAuction(ctx context.Context, id string, upd repository.AuctionUpdate) (*models.Auction, error) {
	if upd.CurrentBid != nil || upd.BidCount != nil {
		return nil, fmt.Errorf("service: %w - settlement fields cannot be updated directly", auctionerrors.ErrValidation)
	}
	auction, err := s.auctionRepo.UpdateAuction(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return auction, nil
}

// DeleteAuction removes an auction. The boolean reports whether a record
// existed; deleting twice is not an error.
func (s *AuctionService) DeleteAuction(ctx context.Context, id string) (bool, error) {
	deleted, err := s.auctionRepo.DeleteAuction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service: failed to delete auction %s: %w", id, err)
	}
	return deleted, nil
}

// endingSoon reports whether the auction ends within the next hour. This is
// a point-in-time computation, recomputed on every read.
func endingSoon(a *models.Auction, now time.Time) bool {
	remaining := a.EndTime.Sub(now)
	return remaining > 0 && remaining < endingSoonWindow
}

// DisplayStatusFor buckets an auction for client display: ending-soon when
// the stored status says so, hot when bidding is busy, live otherwise.
func (s *AuctionService) DisplayStatusFor(a *models.Auction) DisplayStatus {
	switch {
	case a.Status == models.AuctionEndingSoon:
		return DisplayEndingSoon
	case a.BidCount > hotBidThreshold:
		return DisplayHot
	default:
		return DisplayLive
	}
}

// DashboardStatsFor computes the user's dashboard statistics at the current
// time. Bids count toward "today" on the server-local calendar day.
func (s *AuctionService) DashboardStatsFor(ctx context.Context, userID string) (*DashboardStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user id", auctionerrors.ErrValidation)
	}

	auctions, err := s.auctionRepo.ListAuctions(ctx, repository.AuctionFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions for user %s: %w", userID, err)
	}
	placed, err := s.bidRepo.ListBidsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for user %s: %w", userID, err)
	}

	now := s.clock.Now()
	stats := &DashboardStats{HighestCurrentBid: decimal.Zero}

	for i := range auctions {
		a := &auctions[i]
		if a.Status == models.AuctionLive || a.Status == models.AuctionEndingSoon {
			stats.ActiveAuctions++
		}
		if a.CurrentBid.GreaterThan(stats.HighestCurrentBid) {
			stats.HighestCurrentBid = a.CurrentBid
		}
		if endingSoon(a, now) {
			stats.EndingInOneHour++
		}
	}

	// Bids the user placed, anywhere, on the current calendar day.
	y, m, d := now.Date()
	for i := range placed {
		by, bm, bd := placed[i].CreatedAt.Date()
		if by == y && bm == m && bd == d {
			stats.TotalBidsToday++
		}
	}

	return stats, nil
}
