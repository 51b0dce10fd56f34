package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pokeguess/internal/cache"
	"pokeguess/internal/config"
	"pokeguess/internal/repository"
	"pokeguess/internal/service"
	"pokeguess/internal/transport/rest"
	"pokeguess/internal/transport/ws"
)

// App wires every component of the server
type App struct {
	Config *config.Config
	Redis  *redis.Client
	Scores repository.ScoreRepo
	Queue  cache.RoundQueue
	Refill *service.RefillService
	Worker *service.RefillWorker
	Hub    *ws.Hub
	Router http.Handler

	closers []func()
}

// ConnectRedis dials and pings the cache tier
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Println("Connected to Redis")
	return rdb, nil
}

// NewRefillService builds the catalog-backed refiller for the shared queue
func NewRefillService(cfg *config.Config, queue cache.RoundQueue) *service.RefillService {
	return service.NewRefillService(queue, service.NewCatalogClient(cfg.Upstream), service.RefillPolicy{
		Target:         cfg.Queue.Target,
		MinID:          cfg.Upstream.MinID,
		MaxID:          cfg.Upstream.MaxID,
		MaxFailures:    cfg.Queue.MaxFailures,
		BackoffInitial: cfg.Queue.BackoffInitial,
		BackoffMax:     cfg.Queue.BackoffMax,
	})
}

// New connects the cache tier and the configured ledger and builds the HTTP router.
// The refill worker is created but not started; see Start.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	rdb, err := ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Redis = rdb
	a.closers = append(a.closers, func() { rdb.Close() })

	scores, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Scores = scores
	a.closers = append(a.closers, closeLedger)

	// Caches
	a.Queue = cache.NewRoundQueue(rdb)
	roundState := cache.NewRoundStateCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	catalogCache := cache.NewCatalogCache(rdb)

	// Background refills
	a.Refill = NewRefillService(cfg, a.Queue)
	a.Worker = service.NewRefillWorker(a.Refill, cfg.Queue.RefillTimeout)

	// WebSocket hub
	a.Hub = ws.NewHub()
	a.closers = append(a.closers, a.Hub.Close)
	log.Println("WebSocket hub started")

	// Services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)
	guessSvc := service.NewGuessService(roundState, scores)
	leaderboardSvc := service.NewLeaderboardService(scores, leaderboard)
	roundSvc := service.NewRoundService(a.Queue, a.Refill, a.Worker, guessSvc, cfg.Queue.MaxSyncRefills)
	roundSvc.SetRefillTimeout(cfg.Queue.RefillTimeout)
	playerSvc := service.NewPlayerService(scores, guessSvc, leaderboardSvc, authSvc)
	catalogSvc := service.NewCatalogService(service.NewCatalogClient(cfg.Upstream), catalogCache, cfg.Upstream.MaxID)

	// Correct guesses feed the rank mirror, which pushes to watchers
	guessSvc.SetScoreListener(leaderboardSvc)
	leaderboardSvc.SetBroadcaster(a.Hub)

	a.Router = rest.NewRouter(&rest.Container{
		AuthService:        authSvc,
		PlayerService:      playerSvc,
		RoundService:       roundSvc,
		GuessService:       guessSvc,
		LeaderboardService: leaderboardSvc,
		CatalogService:     catalogSvc,
		WSHub:              a.Hub,
		CORSOrigins:        cfg.CORSOrigins,
	})

	return a, nil
}

// Start launches the refill worker and queues the startup refill
func (a *App) Start(ctx context.Context) {
	a.Worker.Start(ctx)
	a.Worker.Trigger()
	log.Printf("Refill worker started (target %d rounds)", a.Config.Queue.Target)
}

// Close stops the worker and releases connections in reverse order
func (a *App) Close() {
	if a.Worker != nil {
		a.Worker.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func openLedger(ctx context.Context, cfg *config.Config) (repository.ScoreRepo, func(), error) {
	switch cfg.Ledger {
	case config.LedgerMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		log.Println("Connected to MongoDB")
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(disconnectCtx)
		}
		return repository.NewMongoScoreRepo(client.Database(cfg.MongoDB)), closeFn, nil

	case config.LedgerPostgres:
		db, err := repository.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("Connected to Postgres")
		return repository.NewPostgresScoreRepo(db), func() { db.Close() }, nil

	case config.LedgerSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Printf("Opened SQLite ledger at %s", cfg.SQLitePath)
		return repository.NewSQLiteScoreRepo(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger)
}
