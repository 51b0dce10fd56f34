package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"pokeguess/internal/cache"
	"pokeguess/internal/model"
)

// DefaultSyncRefillTimeout bounds a synchronous refill shared by waiting dispensers
const DefaultSyncRefillTimeout = 2 * time.Minute

// BackgroundRefill schedules a refill without waiting for it
type BackgroundRefill interface {
	Trigger() bool
}

// RoundService hands out rounds from the shared queue
type RoundService struct {
	queue          cache.RoundQueue
	refiller       Refiller
	background     BackgroundRefill
	guesses        *GuessService
	maxSyncRefills int
	refillTimeout  time.Duration

	// coalesces synchronous refills from concurrent dispensers in this process
	refills singleflight.Group
}

// NewRoundService creates a new round service
func NewRoundService(
	queue cache.RoundQueue,
	refiller Refiller,
	background BackgroundRefill,
	guesses *GuessService,
	maxSyncRefills int,
) *RoundService {
	return &RoundService{
		queue:          queue,
		refiller:       refiller,
		background:     background,
		guesses:        guesses,
		maxSyncRefills: maxSyncRefills,
		refillTimeout:  DefaultSyncRefillTimeout,
	}
}

// SetRefillTimeout sets the deadline of a shared synchronous refill
func (s *RoundService) SetRefillTimeout(d time.Duration) {
	if d > 0 {
		s.refillTimeout = d
	}
}

// Dispense pops the next round. On an empty queue it refills synchronously and retries,
// giving up with ErrUpstreamExhausted after maxSyncRefills refills that added nothing.
func (s *RoundService) Dispense(ctx context.Context) (*model.RoundRecord, error) {
	emptyRefills := 0
	for {
		round, err := s.queue.Pop(ctx)
		if errors.Is(err, cache.ErrCorruptEntry) {
			log.Printf("[Round] Dropped queue entry: %v", err)
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: pop round: %v", ErrCacheUnavailable, err)
		}
		if round != nil {
			if s.background != nil {
				s.background.Trigger()
			}
			return round, nil
		}

		if emptyRefills >= s.maxSyncRefills {
			return nil, fmt.Errorf("%w: queue still empty after %d refills", ErrUpstreamExhausted, emptyRefills)
		}

		log.Printf("[Round] Queue empty, refilling synchronously")
		added, err := s.refillShared(ctx)
		if err != nil {
			if added == 0 {
				return nil, err
			}
			log.Printf("[Round] Partial refill (%d added): %v", added, err)
		}
		if added == 0 {
			emptyRefills++
		}
	}
}

// refillShared joins the in-flight synchronous refill or starts one. The refill
// itself is detached from ctx so one cancelled caller can't fail the others.
func (s *RoundService) refillShared(ctx context.Context) (int, error) {
	ch := s.refills.DoChan("refill", func() (interface{}, error) {
		refillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refillTimeout)
		defer cancel()
		return s.refiller.Refill(refillCtx)
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		added, _ := res.Val.(int)
		return added, res.Err
	}
}

// StartRound dispenses a round and makes it the player's active round
func (s *RoundService) StartRound(ctx context.Context, playerID string) (*model.RoundRecord, error) {
	// deleted accounts keep a valid token until it expires
	if err := s.guesses.RequirePlayer(ctx, playerID); err != nil {
		return nil, err
	}
	round, err := s.Dispense(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.guesses.begin(ctx, playerID, round.DisplayName); err != nil {
		return nil, err
	}
	log.Printf("[Round] Player %s started round %d", playerID, round.ExternalID)
	return round, nil
}
