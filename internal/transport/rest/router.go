package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"pokeguess/internal/service"
	"pokeguess/internal/transport/rest/handler"
	"pokeguess/internal/transport/rest/middleware"
	"pokeguess/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService        *service.AuthService
	PlayerService      *service.PlayerService
	RoundService       *service.RoundService
	GuessService       *service.GuessService
	LeaderboardService *service.LeaderboardService
	CatalogService     *service.CatalogService
	WSHub              *ws.Hub
	CORSOrigins        string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.PlayerService)
	gameHandler := handler.NewGameHandler(c.RoundService, c.GuessService)
	playerHandler := handler.NewPlayerHandler(c.PlayerService, c.LeaderboardService)
	catalogHandler := handler.NewCatalogHandler(c.CatalogService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST", "OPTIONS")
	v1.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods("GET", "OPTIONS")
	v1.HandleFunc("/catalog/names", catalogHandler.Names).Methods("GET", "OPTIONS")

	// WebSocket routes (public with token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.LeaderboardService)
		v1.HandleFunc("/ws/leaderboard", wsHandler.LeaderboardWS).Methods("GET")
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/game/start", gameHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/game/guess", gameHandler.Guess).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/me", playerHandler.Me).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/me", playerHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
