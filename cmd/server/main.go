package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokeguess/internal/app"
	"pokeguess/internal/config"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pokeguess-server",
		Short: "Guess-the-creature game API with a pre-fetched round queue.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	config.BindFlags(cmd.Flags(), v)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceUsage = true

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Println("started")
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Config:")
	log.Printf("  Ledger:    %s", cfg.Ledger)
	log.Printf("  Upstream:  %s (ids %d..%d)", cfg.Upstream.BaseURL, cfg.Upstream.MinID, cfg.Upstream.MaxID)
	log.Printf("  Queue:     target %d, %d failures/refill, %d empty refills/dispense",
		cfg.Queue.Target, cfg.Queue.MaxFailures, cfg.Queue.MaxSyncRefills)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Start(context.Background())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on :%d", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST   /v1/auth/guest")
		log.Println("  POST   /v1/game/start")
		log.Println("  POST   /v1/game/guess")
		log.Println("  GET    /v1/leaderboard")
		log.Println("  GET    /v1/catalog/names")
		log.Println("  GET    /v1/me")
		log.Println("  DELETE /v1/me")
		log.Println("  WS     /v1/ws/leaderboard")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}
