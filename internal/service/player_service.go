package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"pokeguess/internal/model"
	"pokeguess/internal/repository"
)

var (
	ErrInvalidNickname = errors.New("nickname must be 1-32 characters without <, >, / or \\")
	ErrPlayerNotFound  = errors.New("player not found")
)

// PlayerService handles guest sign-up, dashboards and account removal
type PlayerService struct {
	scores      repository.ScoreRepo
	guesses     *GuessService
	leaderboard *LeaderboardService
	authSvc     *AuthService
}

// NewPlayerService creates a new player service
func NewPlayerService(
	scores repository.ScoreRepo,
	guesses *GuessService,
	leaderboard *LeaderboardService,
	authSvc *AuthService,
) *PlayerService {
	return &PlayerService{
		scores:      scores,
		guesses:     guesses,
		leaderboard: leaderboard,
		authSvc:     authSvc,
	}
}

// RegisterGuest creates a new player identity with a zero score and returns its token
func (s *PlayerService) RegisterGuest(ctx context.Context, nickname string) (*model.GuestResponse, error) {
	nickname = strings.TrimSpace(nickname)
	if !validNickname(nickname) {
		return nil, ErrInvalidNickname
	}

	playerID := "p_" + uuid.New().String()
	if err := s.scores.EnsurePlayer(ctx, playerID, nickname); err != nil {
		return nil, fmt.Errorf("%w: create player: %v", ErrLedgerUnavailable, err)
	}

	token, err := s.authSvc.IssuePlayerToken(playerID, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[Player] Registered guest %s (%s)", playerID, nickname)
	return &model.GuestResponse{
		Token:    token,
		PlayerID: playerID,
		Nickname: nickname,
	}, nil
}

// Dashboard returns the player's nickname, score and rank
func (s *PlayerService) Dashboard(ctx context.Context, playerID string) (*model.Dashboard, error) {
	player, err := s.scores.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%w: get player: %v", ErrLedgerUnavailable, err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return &model.Dashboard{
		PlayerID: player.ID,
		Nickname: player.Nickname,
		Score:    player.Score,
		Rank:     s.leaderboard.Rank(ctx, playerID),
	}, nil
}

// DeleteAccount removes the player's ledger row, active round and rank
func (s *PlayerService) DeleteAccount(ctx context.Context, playerID string) error {
	// drop the active round first so a pending guess can't re-create the ledger row
	if err := s.guesses.Abandon(ctx, playerID); err != nil {
		return err
	}
	if err := s.scores.Delete(ctx, playerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("%w: delete player: %v", ErrLedgerUnavailable, err)
	}
	s.leaderboard.Forget(ctx, playerID)
	log.Printf("[Player] Deleted player %s", playerID)
	return nil
}

func validNickname(n string) bool {
	if n == "" || utf8.RuneCountInString(n) > 32 {
		return false
	}
	return !strings.ContainsAny(n, `<>/\`)
}
