package handler

import (
	"net/http"
	"strconv"

	"pokeguess/internal/service"
	"pokeguess/internal/transport/rest/middleware"
)

// PlayerHandler handles player endpoints
type PlayerHandler struct {
	playerSvc      *service.PlayerService
	leaderboardSvc *service.LeaderboardService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerSvc *service.PlayerService, leaderboardSvc *service.LeaderboardService) *PlayerHandler {
	return &PlayerHandler{
		playerSvc:      playerSvc,
		leaderboardSvc: leaderboardSvc,
	}
}

// Me handles GET /v1/me
func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	dash, err := h.playerSvc.Dashboard(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dash)
}

// Delete handles DELETE /v1/me
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.playerSvc.DeleteAccount(r.Context(), playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Leaderboard handles GET /v1/leaderboard?top=N
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	top := service.DefaultLeaderboardSize
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "top must be between 1 and 100")
			return
		}
		top = n
	}

	entries, err := h.leaderboardSvc.Top(r.Context(), top)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
	})
}
