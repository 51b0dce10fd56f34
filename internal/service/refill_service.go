package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"pokeguess/internal/cache"
	"pokeguess/internal/model"
)

// RoundFetcher retrieves one candidate round by catalog id
type RoundFetcher interface {
	Fetch(ctx context.Context, id int) (*model.RoundRecord, error)
}

// RefillPolicy bounds a single refill invocation
type RefillPolicy struct {
	Target         int
	MinID          int
	MaxID          int
	MaxFailures    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// RefillService tops the shared round queue up to its target size
type RefillService struct {
	queue   cache.RoundQueue
	fetcher RoundFetcher
	policy  RefillPolicy
}

// NewRefillService creates a new refill service
func NewRefillService(queue cache.RoundQueue, fetcher RoundFetcher, policy RefillPolicy) *RefillService {
	return &RefillService{
		queue:   queue,
		fetcher: fetcher,
		policy:  policy,
	}
}

// Refill fetches rounds until the queue holds at least Target entries and returns
// how many it appended. The length is read once; concurrent refills may overshoot.
func (s *RefillService) Refill(ctx context.Context) (int, error) {
	length, err := s.queue.Len(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%w: queue length: %v", ErrCacheUnavailable, err)
	}

	added := 0
	failures := 0
	backoff := s.policy.BackoffInitial

	for length < int64(s.policy.Target) {
		id := s.randomID()
		round, err := s.fetcher.Fetch(ctx, id)
		if err == nil && !round.Valid() {
			err = fmt.Errorf("%w: subject %d", ErrInvalidPayload, id)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return added, ctxErr
			}
			failures++
			log.Printf("[Refill] Skipping id %d (%d/%d failures): %v", id, failures, s.policy.MaxFailures, err)
			if failures >= s.policy.MaxFailures {
				return added, fmt.Errorf("%w: %d failures while refilling, last: %v", ErrUpstreamExhausted, failures, err)
			}
			if err := sleepCtx(ctx, backoff); err != nil {
				return added, err
			}
			backoff = nextBackoff(backoff, s.policy.BackoffMax)
			continue
		}
		backoff = s.policy.BackoffInitial

		if err := s.queue.Push(ctx, round); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return added, ctxErr
			}
			return added, fmt.Errorf("%w: push round: %v", ErrCacheUnavailable, err)
		}
		length++
		added++
	}

	if added > 0 {
		log.Printf("[Refill] Added %d rounds (queue length ~%d)", added, length)
	}
	return added, nil
}

// randomID picks a uniform id in [MinID, MaxID]
func (s *RefillService) randomID() int {
	return s.policy.MinID + secureIntn(s.policy.MaxID-s.policy.MinID+1)
}

// secureIntn returns a uniform random int in [0, n) using crypto/rand
func secureIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max || next <= 0 {
		return max
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

