package handlers

import (
	"encoding/json"
	"net/http"

	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BidHandler handles bid HTTP requests
type BidHandler struct {
	bidService     *services.BidService
	auctionService *services.AuctionService
	hub            *services.WSHub
}

// NewBidHandler creates a new bid handler
func NewBidHandler(bidService *services.BidService, auctionService *services.AuctionService, hub *services.WSHub) *BidHandler {
	return &BidHandler{
		bidService:     bidService,
		auctionService: auctionService,
		hub:            hub,
	}
}

type placeBidRequest struct {
	AuctionID        string          `json:"auction_id"`
	Amount           decimal.Decimal `json:"amount"`
	Bidder           string          `json:"bidder"`
	BidderFacebookID *string         `json:"bidder_facebook_id,omitempty"`
	UserID           *string         `json:"user_id,omitempty"`
}

type placeBidResponse struct {
	Bid     *models.Bid     `json:"bid"`
	Auction *models.Auction `json:"auction"`
}

// Place handles POST /api/v1/bids. A bid below the current bid plus the
// minimum increment is rejected with the minimum acceptable amount in the
// error message.
func (h *BidHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bid, auction, err := h.bidService.PlaceBid(r.Context(), services.PlaceBidInput{
		AuctionID:        req.AuctionID,
		Amount:           req.Amount,
		Bidder:           req.Bidder,
		BidderFacebookID: req.BidderFacebookID,
		UserID:           req.UserID,
	})
	if err != nil {
		log.Debug().Err(err).Str("auction_id", req.AuctionID).Msg("Bid rejected")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("bid_id", bid.ID).
		Str("auction_id", auction.ID).
		Str("amount", bid.Amount.StringFixed(2)).
		Msg("Bid placed")

	h.hub.PublishNewBid(auction.ID, bid)
	h.hub.PublishAuctionUpdate(auction.ID, auction)

	respondJSON(w, placeBidResponse{Bid: bid, Auction: auction}, http.StatusCreated)
}

// ListForAuction handles GET /api/v1/auctions/{id}/bids, newest first.
func (h *BidHandler) ListForAuction(w http.ResponseWriter, r *http.Request) {
	bids, err := h.bidService.GetBidsForAuction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, bids, http.StatusOK)
}

// ListMine handles GET /api/v1/bids, the authenticated user's bids.
func (h *BidHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	bids, err := h.bidService.GetBidsForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, bids, http.StatusOK)
}
