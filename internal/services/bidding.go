package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"

	"github.com/shopspring/decimal"
)

// BidService is the single authority for accepting or rejecting bids and
// mutating auction and bid state consistently.
type BidService struct {
	auctionRepo repository.AuctionRepository
	bidRepo     repository.BidRepository

	// Per-auction locks serialize the read-decide-write settlement sequence
	// so two bids are never judged against a stale current bid. Bids on
	// different auctions proceed in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBidService creates a new bid service
func NewBidService(auctionRepo repository.AuctionRepository, bidRepo repository.BidRepository) *BidService {
	return &BidService{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *BidService) lockFor(auctionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[auctionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[auctionID] = l
	}
	return l
}

// dropLock reaps the lock entry for an auction that no longer exists. A
// goroutine still holding the old mutex can only fail with not-found, so a
// fresh entry racing it is harmless.
func (s *BidService) dropLock(auctionID string) {
	s.mu.Lock()
	delete(s.locks, auctionID)
	s.mu.Unlock()
}

// PlaceBidInput holds a bid submission.
type PlaceBidInput struct {
	AuctionID        string
	Amount           decimal.Decimal
	Bidder           string
	BidderFacebookID *string
	UserID           *string
}

// PlaceBid validates the submission against the auction's acceptance rule
// and, on acceptance, settles it: one atomic store operation records the
// bid as the sole winning bid and advances the auction's current bid and
// bid count. A rejection is terminal for the call; the client resubmits
// with a corrected amount.
func (s *BidService) PlaceBid(ctx context.Context, in PlaceBidInput) (*models.Bid, *models.Auction, error) {
	if in.AuctionID == "" {
		return nil, nil, fmt.Errorf("service: %w - missing auction id", auctionerrors.ErrValidation)
	}
	if in.Bidder == "" {
		return nil, nil, fmt.Errorf("service: %w - missing bidder", auctionerrors.ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrValidation)
	}

	l := s.lockFor(in.AuctionID)
	l.Lock()
	defer l.Unlock()

	auction, err := s.auctionRepo.GetAuction(ctx, in.AuctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNotFound) {
			s.dropLock(in.AuctionID)
		}
		return nil, nil, fmt.Errorf("service: %w", err)
	}

	minimum := auction.CurrentBid.Add(auction.MinIncrement)
	if in.Amount.LessThan(minimum) {
		return nil, nil, fmt.Errorf("service: %w - bid must be at least %s", auctionerrors.ErrBidTooLow, minimum.StringFixed(2))
	}

	bid, updated, err := s.bidRepo.SettleBid(ctx, repository.CreateBidInput{
		Amount:           in.Amount,
		Bidder:           in.Bidder,
		BidderFacebookID: in.BidderFacebookID,
		AuctionID:        in.AuctionID,
		UserID:           in.UserID,
		IsWinning:        true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to settle bid for auction %s: %w", in.AuctionID, err)
	}

	return bid, updated, nil
}

// GetBidsForAuction returns all bids for an auction, newest first.
func (s *BidService) GetBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction id", auctionerrors.ErrValidation)
	}
	bids, err := s.bidRepo.ListBidsForAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetBidsForUser returns all bids placed by a user, newest first.
func (s *BidService) GetBidsForUser(ctx context.Context, userID string) ([]models.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user id", auctionerrors.ErrValidation)
	}
	bids, err := s.bidRepo.ListBidsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list bids for user %s: %w", userID, err)
	}
	return bids, nil
}

// lockCount reports how many per-auction lock entries are held.
func (s *BidService) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
