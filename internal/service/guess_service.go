package service

import (
	"context"
	"fmt"
	"log"

	"pokeguess/internal/cache"
	"pokeguess/internal/model"
	"pokeguess/internal/repository"
)

// ScoreListener is told about every new total after a correct guess
type ScoreListener interface {
	RecordScore(ctx context.Context, playerID string, total int)
}

// GuessService validates guesses against each player's active round
type GuessService struct {
	state    cache.RoundStateCache
	scores   repository.ScoreRepo
	listener ScoreListener
}

// NewGuessService creates a new guess service
func NewGuessService(state cache.RoundStateCache, scores repository.ScoreRepo) *GuessService {
	return &GuessService{
		state:  state,
		scores: scores,
	}
}

// SetScoreListener sets the listener notified after a correct guess
func (s *GuessService) SetScoreListener(l ScoreListener) {
	s.listener = l
}

// Start makes name the player's expected answer, discarding any unresolved round.
// Fails with ErrPlayerNotFound once the player's account is gone.
func (s *GuessService) Start(ctx context.Context, playerID, name string) error {
	if err := s.RequirePlayer(ctx, playerID); err != nil {
		return err
	}
	return s.begin(ctx, playerID, name)
}

// RequirePlayer checks that the player still has a ledger row
func (s *GuessService) RequirePlayer(ctx context.Context, playerID string) error {
	player, err := s.scores.GetPlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("%w: get player: %v", ErrLedgerUnavailable, err)
	}
	if player == nil {
		return ErrPlayerNotFound
	}
	return nil
}

func (s *GuessService) begin(ctx context.Context, playerID, name string) error {
	if err := s.state.Start(ctx, playerID, model.NormalizeGuess(name)); err != nil {
		return fmt.Errorf("%w: start round: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Submit checks a guess. A wrong guess, or a guess with no active round, is not an error.
func (s *GuessService) Submit(ctx context.Context, playerID, text string) (*model.GuessResult, error) {
	guess := model.NormalizeGuess(text)

	expected, err := s.state.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%w: get round: %v", ErrCacheUnavailable, err)
	}
	if expected == "" || guess != expected {
		return &model.GuessResult{Correct: false}, nil
	}

	// Only one concurrent correct guess may consume the round
	claimed, err := s.state.Claim(ctx, playerID, expected)
	if err != nil {
		return nil, fmt.Errorf("%w: claim round: %v", ErrCacheUnavailable, err)
	}
	if !claimed {
		return &model.GuessResult{Correct: false}, nil
	}

	total, err := s.scores.Increment(ctx, playerID, model.RoundReward)
	if err != nil {
		if _, rerr := s.state.Restore(ctx, playerID, expected); rerr != nil {
			log.Printf("[Guess] ERROR: failed to restore round for %s after ledger failure: %v", playerID, rerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	log.Printf("[Guess] Player %s guessed %q, score now %d", playerID, expected, total)
	if s.listener != nil {
		s.listener.RecordScore(ctx, playerID, total)
	}

	return &model.GuessResult{
		Correct: true,
		Score:   total,
		Answer:  expected,
	}, nil
}

// Abandon drops the player's active round without scoring it
func (s *GuessService) Abandon(ctx context.Context, playerID string) error {
	if err := s.state.Clear(ctx, playerID); err != nil {
		return fmt.Errorf("%w: clear round: %v", ErrCacheUnavailable, err)
	}
	return nil
}
