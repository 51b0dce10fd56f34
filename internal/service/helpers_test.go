package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"pokeguess/internal/model"
	"pokeguess/internal/repository"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// fakeFetcher hands out unique rounds; failEvery>0 makes every n-th call fail
type fakeFetcher struct {
	calls     atomic.Int64
	next      atomic.Int64
	failEvery int64
	alwaysErr error
	delay     time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, id int) (*model.RoundRecord, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.alwaysErr != nil {
		return nil, f.alwaysErr
	}
	if f.failEvery > 0 && n%f.failEvery == 0 {
		return nil, ErrInvalidPayload
	}
	seq := int(f.next.Add(1))
	return &model.RoundRecord{
		ExternalID:  1000 + seq,
		DisplayName: "creature-" + strconv.Itoa(seq),
		ImageRef:    "https://img.example/" + strconv.Itoa(seq) + ".png",
	}, nil
}

func testPolicy(target int) RefillPolicy {
	return RefillPolicy{
		Target:         target,
		MinID:          1,
		MaxID:          386,
		MaxFailures:    5,
		BackoffInitial: time.Millisecond,
		BackoffMax:     4 * time.Millisecond,
	}
}

// memScoreRepo is an in-memory ledger; set failing to simulate an outage
type memScoreRepo struct {
	mu      sync.Mutex
	players map[string]*model.Player
	failing bool
}

func newMemScoreRepo() *memScoreRepo {
	return &memScoreRepo{players: make(map[string]*model.Player)}
}

var errLedgerDown = errors.New("ledger down")

func (r *memScoreRepo) setFailing(v bool) {
	r.mu.Lock()
	r.failing = v
	r.mu.Unlock()
}

func (r *memScoreRepo) EnsurePlayer(ctx context.Context, playerID, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errLedgerDown
	}
	p, ok := r.players[playerID]
	if !ok {
		p = &model.Player{ID: playerID, CreatedAt: time.Now()}
		r.players[playerID] = p
	}
	p.Nickname = nickname
	return nil
}

func (r *memScoreRepo) Increment(ctx context.Context, playerID string, points int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return 0, errLedgerDown
	}
	p, ok := r.players[playerID]
	if !ok {
		p = &model.Player{ID: playerID}
		r.players[playerID] = p
	}
	p.Score += points
	return p.Score, nil
}

func (r *memScoreRepo) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errLedgerDown
	}
	p, ok := r.players[playerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memScoreRepo) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return nil, errLedgerDown
	}
	entries := make([]model.LeaderboardEntry, 0, len(r.players))
	for _, p := range r.players {
		entries = append(entries, model.LeaderboardEntry{PlayerID: p.ID, Nickname: p.Nickname, Score: p.Score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (r *memScoreRepo) Delete(ctx context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errLedgerDown
	}
	if _, ok := r.players[playerID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.players, playerID)
	return nil
}

func (r *memScoreRepo) score(playerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok {
		return p.Score
	}
	return 0
}

// countingTrigger records background refill requests
type countingTrigger struct {
	n atomic.Int64
}

func (c *countingTrigger) Trigger() bool {
	c.n.Add(1)
	return true
}

// recordingBroadcaster captures broadcast message types
type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs []string
}

func (b *recordingBroadcaster) BroadcastAll(msgType string, payload interface{}) {
	b.mu.Lock()
	b.msgs = append(b.msgs, msgType)
	b.mu.Unlock()
}
