package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"
	"groupbid-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AuctionHandler handles auction HTTP requests
type AuctionHandler struct {
	auctionService *services.AuctionService
	hub            *services.WSHub
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(auctionService *services.AuctionService, hub *services.WSHub) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

type createAuctionRequest struct {
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	FacebookURL     *string         `json:"facebook_url,omitempty"`
	StartingBid     decimal.Decimal `json:"starting_bid"`
	MinIncrement    decimal.Decimal `json:"min_increment"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	FacebookGroupID *string         `json:"facebook_group_id,omitempty"`
	ImageURLs       []string        `json:"image_urls,omitempty"`
	IsLiveFeed      bool            `json:"is_live_feed"`
}

// Create handles POST /api/v1/auctions
func (h *AuctionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	auction, err := h.auctionService.CreateAuction(r.Context(), services.CreateAuctionInput{
		Title:           req.Title,
		Description:     req.Description,
		FacebookURL:     req.FacebookURL,
		StartingBid:     req.StartingBid,
		MinIncrement:    req.MinIncrement,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		UserID:          userID,
		FacebookGroupID: req.FacebookGroupID,
		ImageURLs:       req.ImageURLs,
		IsLiveFeed:      req.IsLiveFeed,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create auction")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("auction_id", auction.ID).Str("user_id", userID).Msg("Auction created")
	respondJSON(w, auction, http.StatusCreated)
}

// auctionView decorates an auction with its derived display status.
type auctionView struct {
	*models.Auction
	DisplayStatus services.DisplayStatus `json:"display_status"`
}

func (h *AuctionHandler) view(a *models.Auction) auctionView {
	return auctionView{Auction: a, DisplayStatus: h.auctionService.DisplayStatusFor(a)}
}

// List handles GET /api/v1/auctions
func (h *AuctionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.AuctionFilter{
		UserID: r.URL.Query().Get("user_id"),
		Status: models.AuctionStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	auctions, err := h.auctionService.ListAuctions(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]auctionView, 0, len(auctions))
	for i := range auctions {
		views = append(views, h.view(&auctions[i]))
	}
	respondJSON(w, views, http.StatusOK)
}

// Get handles GET /api/v1/auctions/{id}
func (h *AuctionHandler) Get(w http.ResponseWriter, r *http.Request) {
	auction, err := h.auctionService.GetAuction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, h.view(auction), http.StatusOK)
}

type updateAuctionRequest struct {
	Title          *string               `json:"title,omitempty"`
	Description    *string               `json:"description,omitempty"`
	FacebookURL    *string               `json:"facebook_url,omitempty"`
	FacebookPostID *string               `json:"facebook_post_id,omitempty"`
	Status         *models.AuctionStatus `json:"status,omitempty"`
	ImageURLs      *[]string             `json:"image_urls,omitempty"`
}

// Update handles PUT /api/v1/auctions/{id}
func (h *AuctionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	auction, err := h.auctionService.UpdateAuction(r.Context(), id, repository.AuctionUpdate{
		Title:          req.Title,
		Description:    req.Description,
		FacebookURL:    req.FacebookURL,
		FacebookPostID: req.FacebookPostID,
		Status:         req.Status,
		ImageURLs:      req.ImageURLs,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.hub.PublishAuctionUpdate(auction.ID, h.view(auction))
	respondJSON(w, h.view(auction), http.StatusOK)
}

// Delete handles DELETE /api/v1/auctions/{id}
func (h *AuctionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.auctionService.DeleteAuction(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if deleted {
		log.Info().Str("auction_id", id).Msg("Auction deleted")
	}
	respondJSON(w, map[string]bool{"deleted": deleted}, http.StatusOK)
}
