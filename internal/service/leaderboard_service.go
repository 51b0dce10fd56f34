package service

import (
	"context"
	"fmt"
	"log"

	"pokeguess/internal/cache"
	"pokeguess/internal/model"
	"pokeguess/internal/repository"
)

// DefaultLeaderboardSize is how many rows the public leaderboard shows
const DefaultLeaderboardSize = 5

// LeaderboardService serves the top-N board and keeps the rank mirror current
type LeaderboardService struct {
	scores      repository.ScoreRepo
	mirror      cache.LeaderboardCache
	broadcaster Broadcaster
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(scores repository.ScoreRepo, mirror cache.LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{
		scores: scores,
		mirror: mirror,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *LeaderboardService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Top returns the highest scores from the ledger
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	entries, err := s.scores.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: leaderboard: %v", ErrLedgerUnavailable, err)
	}
	return entries, nil
}

// Rank returns the player's 1-indexed rank from the mirror, -1 if unknown
func (s *LeaderboardService) Rank(ctx context.Context, playerID string) int64 {
	rank, err := s.mirror.GetRank(ctx, playerID)
	if err != nil {
		log.Printf("[Leaderboard] Warning: rank lookup for %s failed: %v", playerID, err)
		return -1
	}
	return rank
}

// RecordScore mirrors a new total and pushes the board to live viewers.
// Failures here never undo the ledger write, so they are only logged.
func (s *LeaderboardService) RecordScore(ctx context.Context, playerID string, total int) {
	if err := s.mirror.UpdateScore(ctx, playerID, total); err != nil {
		log.Printf("[Leaderboard] Warning: failed to mirror score for %s: %v", playerID, err)
	}
	if s.broadcaster == nil {
		return
	}
	entries, err := s.scores.Top(ctx, DefaultLeaderboardSize)
	if err != nil {
		log.Printf("[Leaderboard] Warning: failed to load board for broadcast: %v", err)
		return
	}
	s.broadcaster.BroadcastAll("leaderboard_update", map[string]interface{}{
		"leaderboard": entries,
	})
}

// Forget removes a player from the rank mirror
func (s *LeaderboardService) Forget(ctx context.Context, playerID string) {
	if err := s.mirror.Remove(ctx, playerID); err != nil {
		log.Printf("[Leaderboard] Warning: failed to remove %s from mirror: %v", playerID, err)
	}
}
