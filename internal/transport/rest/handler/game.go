package handler

import (
	"encoding/json"
	"net/http"

	"pokeguess/internal/model"
	"pokeguess/internal/service"
	"pokeguess/internal/transport/rest/middleware"
)

// GameHandler handles round and guess endpoints
type GameHandler struct {
	roundSvc *service.RoundService
	guessSvc *service.GuessService
}

// NewGameHandler creates a new game handler
func NewGameHandler(roundSvc *service.RoundService, guessSvc *service.GuessService) *GameHandler {
	return &GameHandler{
		roundSvc: roundSvc,
		guessSvc: guessSvc,
	}
}

// Start handles POST /v1/game/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	round, err := h.roundSvc.StartRound(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"round": round.View(),
	})
}

// Guess handles POST /v1/game/guess
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())

	var req model.GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.guessSvc.Submit(r.Context(), playerID, req.Guess)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
