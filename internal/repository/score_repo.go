package repository

import (
	"context"
	"errors"

	"pokeguess/internal/model"
)

// ErrNotFound is returned when a player has no ledger row
var ErrNotFound = errors.New("player not found")

// ScoreRepo is the score ledger: one profile and integer score per player identity
type ScoreRepo interface {
	// EnsurePlayer creates the player with score 0 if absent; an existing row keeps its score.
	EnsurePlayer(ctx context.Context, playerID, nickname string) error
	// Increment atomically adds points, inserting the row if absent, and returns the new total.
	Increment(ctx context.Context, playerID string, points int) (int, error)
	GetPlayer(ctx context.Context, playerID string) (*model.Player, error)
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Delete(ctx context.Context, playerID string) error
}
