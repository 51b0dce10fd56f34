package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pokeguess/internal/model"
	"pokeguess/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	playerSvc *service.PlayerService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(playerSvc *service.PlayerService) *AuthHandler {
	return &AuthHandler{playerSvc: playerSvc}
}

// Guest handles POST /v1/auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req model.GuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.playerSvc.RegisterGuest(r.Context(), req.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service sentinels onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidNickname):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUpstreamExhausted),
		errors.Is(err, service.ErrUpstreamUnavailable),
		errors.Is(err, service.ErrLedgerUnavailable):
		log.Printf("[HTTP] Service unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable, try again")
	default:
		log.Printf("[HTTP] Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
