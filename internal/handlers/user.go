package handlers

import (
	"encoding/json"
	"net/http"

	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"
	"groupbid-backend/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// UserHandler handles user and settings HTTP requests
type UserHandler struct {
	userService    *services.UserService
	auctionService *services.AuctionService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, auctionService *services.AuctionService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		auctionService: auctionService,
	}
}

type registerRequest struct {
	Username   string  `json:"username"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	FacebookID *string `json:"facebook_id,omitempty"`
}

type registerResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Register(r.Context(), services.RegisterInput{
		Username:   req.Username,
		Name:       req.Name,
		Email:      req.Email,
		Avatar:     req.Avatar,
		FacebookID: req.FacebookID,
	})
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to register user")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	respondJSON(w, registerResponse{User: user, Token: token}, http.StatusCreated)
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, user, http.StatusOK)
}

type linkFacebookRequest struct {
	FacebookID  string `json:"facebook_id"`
	AccessToken string `json:"access_token"`
}

// LinkFacebook handles POST /api/v1/users/me/facebook
func (h *UserHandler) LinkFacebook(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req linkFacebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.LinkFacebook(r.Context(), userID, req.FacebookID, req.AccessToken)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to link facebook account")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Facebook account linked")
	respondJSON(w, user, http.StatusOK)
}

// GetSettings handles GET /api/v1/settings
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	settings, err := h.userService.GetSettings(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, settings, http.StatusOK)
}

type updateSettingsRequest struct {
	OutbidNotifications *bool            `json:"outbid_notifications,omitempty"`
	EndingNotifications *bool            `json:"ending_notifications,omitempty"`
	NewBidNotifications *bool            `json:"new_bid_notifications,omitempty"`
	DefaultMinIncrement *decimal.Decimal `json:"default_min_increment,omitempty"`
	DefaultDuration     *int             `json:"default_duration,omitempty"`
}

// UpdateSettings handles PUT /api/v1/settings
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := h.userService.UpdateSettings(r.Context(), userID, repository.SettingsUpdate{
		OutbidNotifications: req.OutbidNotifications,
		EndingNotifications: req.EndingNotifications,
		NewBidNotifications: req.NewBidNotifications,
		DefaultMinIncrement: req.DefaultMinIncrement,
		DefaultDuration:     req.DefaultDuration,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, settings, http.StatusOK)
}

// GetDashboardStats handles GET /api/v1/dashboard/stats
func (h *UserHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.auctionService.DashboardStatsFor(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute dashboard stats")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, stats, http.StatusOK)
}
