package handlers

import (
	"encoding/json"
	"net/http"

	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GroupHandler handles facebook group HTTP requests
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type registerGroupRequest struct {
	FacebookGroupID string `json:"facebook_group_id"`
	Name            string `json:"name"`
	MemberCount     *int   `json:"member_count,omitempty"`
}

// Register handles POST /api/v1/groups
func (h *GroupHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req registerGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.RegisterGroup(r.Context(), services.RegisterGroupInput{
		FacebookGroupID: req.FacebookGroupID,
		Name:            req.Name,
		MemberCount:     req.MemberCount,
		UserID:          userID,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to register group")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("group_id", group.ID).Str("user_id", userID).Msg("Group registered")
	respondJSON(w, group, http.StatusCreated)
}

// List handles GET /api/v1/groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	groups, err := h.groupService.ListGroups(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, groups, http.StatusOK)
}

// Deactivate handles DELETE /api/v1/groups/{id}
func (h *GroupHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	group, err := h.groupService.DeactivateGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, group, http.StatusOK)
}
