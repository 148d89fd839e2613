package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"groupbid-backend/internal/auctionerrors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auctionerrors.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, auctionerrors.ErrDuplicateKey):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, auctionerrors.ErrValidation), errors.Is(err, auctionerrors.ErrBidTooLow):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}
