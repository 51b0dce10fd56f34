package middleware

import (
	"context"
	"net/http"
	"strings"

	"pokeguess/internal/service"
)

type contextKey string

const (
	PlayerIDKey contextKey = "playerId"
	NicknameKey contextKey = "nickname"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequirePlayer validates player JWT from Authorization header or query param
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			writeUnauthorized(w, "missing authorization")
			return
		}

		claims, err := m.authSvc.ValidatePlayerToken(token)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, PlayerIDKey, claims.Subject)
		ctx = context.WithValue(ctx, NicknameKey, claims.Nickname)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayerID extracts player ID from context
func GetPlayerID(ctx context.Context) string {
	if v, ok := ctx.Value(PlayerIDKey).(string); ok {
		return v
	}
	return ""
}

// GetNickname extracts the token nickname from context
func GetNickname(ctx context.Context) string {
	if v, ok := ctx.Value(NicknameKey).(string); ok {
		return v
	}
	return ""
}

// WithPlayer returns ctx carrying the given identity
func WithPlayer(ctx context.Context, playerID, nickname string) context.Context {
	ctx = context.WithValue(ctx, PlayerIDKey, playerID)
	return context.WithValue(ctx, NicknameKey, nickname)
}

// ExtractToken reads a bearer token, falling back to the token query param for WebSocket
func ExtractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
