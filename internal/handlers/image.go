package handlers

import (
	"encoding/json"
	"net/http"

	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ImageHandler handles image upload HTTP requests
type ImageHandler struct {
	imageService *services.ImageService
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

type uploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// GetUploadURL handles POST /api/v1/images/upload-url
func (h *ImageHandler) GetUploadURL(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Filename == "" || req.ContentType == "" {
		respondError(w, "filename and content_type are required", http.StatusBadRequest)
		return
	}

	resp, err := h.imageService.GetUploadURL(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate upload URL")
		respondError(w, "Failed to generate upload URL", http.StatusInternalServerError)
		return
	}
	respondJSON(w, resp, http.StatusOK)
}
