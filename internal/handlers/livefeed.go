package handlers

import (
	"encoding/json"
	"net/http"

	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"
	"groupbid-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LiveFeedHandler handles live feed session HTTP requests
type LiveFeedHandler struct {
	liveFeedService *services.LiveFeedService
	hub             *services.WSHub
}

// NewLiveFeedHandler creates a new live feed handler
func NewLiveFeedHandler(liveFeedService *services.LiveFeedService, hub *services.WSHub) *LiveFeedHandler {
	return &LiveFeedHandler{
		liveFeedService: liveFeedService,
		hub:             hub,
	}
}

type createSessionRequest struct {
	Name            string          `json:"name"`
	FacebookGroupID *string         `json:"facebook_group_id,omitempty"`
	BidIncrement    decimal.Decimal `json:"bid_increment"`
	ItemDuration    int             `json:"item_duration"`
}

// CreateSession handles POST /api/v1/live-feed/sessions
func (h *LiveFeedHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.liveFeedService.CreateSession(r.Context(), services.CreateSessionInput{
		UserID:          userID,
		FacebookGroupID: req.FacebookGroupID,
		Name:            req.Name,
		BidIncrement:    req.BidIncrement,
		ItemDuration:    req.ItemDuration,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create live feed session")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session_id", session.ID).Str("user_id", userID).Msg("Live feed session created")
	respondJSON(w, session, http.StatusCreated)
}

// ListSessions handles GET /api/v1/live-feed/sessions
func (h *LiveFeedHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sessions, err := h.liveFeedService.ListSessions(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, sessions, http.StatusOK)
}

type sessionResponse struct {
	Session *models.LiveFeedSession `json:"session"`
	Items   []models.LiveFeedItem   `json:"items"`
}

// GetSession handles GET /api/v1/live-feed/sessions/{id}
func (h *LiveFeedHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, items, err := h.liveFeedService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, sessionResponse{Session: session, Items: items}, http.StatusOK)
}

// ActivateSession handles POST /api/v1/live-feed/sessions/{id}/activate
func (h *LiveFeedHandler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.liveFeedService.ActivateSession(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session_id", id).Msg("Live feed session activated")
	h.hub.PublishAuctionUpdate(session.ID, session)
	respondJSON(w, session, http.StatusOK)
}

// DeleteSession handles DELETE /api/v1/live-feed/sessions/{id}
func (h *LiveFeedHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.liveFeedService.DeleteSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, map[string]bool{"deleted": deleted}, http.StatusOK)
}

type createItemRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	StartingBid decimal.Decimal `json:"starting_bid"`
	ImageURLs   []string        `json:"image_urls,omitempty"`
}

// AddItem handles POST /api/v1/live-feed/sessions/{id}/items
func (h *LiveFeedHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.liveFeedService.AddItem(r.Context(), sessionID, repository.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		StartingBid: req.StartingBid,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, item, http.StatusCreated)
}

type updateItemRequest struct {
	Name        *string                    `json:"name,omitempty"`
	Description *string                    `json:"description,omitempty"`
	CurrentBid  *decimal.Decimal           `json:"current_bid,omitempty"`
	Status      *models.LiveFeedItemStatus `json:"status,omitempty"`
	ImageURLs   *[]string                  `json:"image_urls,omitempty"`
}

// UpdateItem handles PUT /api/v1/live-feed/items/{id}
func (h *LiveFeedHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.liveFeedService.UpdateItem(r.Context(), chi.URLParam(r, "id"), repository.ItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		CurrentBid:  req.CurrentBid,
		Status:      req.Status,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, item, http.StatusOK)
}

// RemoveItem handles DELETE /api/v1/live-feed/items/{id}
func (h *LiveFeedHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.liveFeedService.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, map[string]bool{"deleted": deleted}, http.StatusOK)
}

// AdvanceItem handles POST /api/v1/live-feed/sessions/{id}/advance. The
// closed item and the session's new position are broadcast to subscribers
// keyed by the session id.
func (h *LiveFeedHandler) AdvanceItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	session, closed, err := h.liveFeedService.AdvanceItem(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("session_id", sessionID).
		Str("item_id", closed.ID).
		Str("item_status", string(closed.Status)).
		Msg("Live feed advanced")

	h.hub.PublishAuctionUpdate(sessionID, sessionResponse{Session: session, Items: []models.LiveFeedItem{*closed}})
	respondJSON(w, sessionResponse{Session: session, Items: []models.LiveFeedItem{*closed}}, http.StatusOK)
}
