package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokeguess/internal/app"
	"pokeguess/internal/cache"
	"pokeguess/internal/config"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()
	var reset bool

	cmd := &cobra.Command{
		Use:   "pokeguess-seed",
		Short: "Fill the shared round queue up to its target before serving traffic.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return seed(cmd.Context(), cfg, reset)
		},
	}

	config.BindFlags(cmd.Flags(), v)
	cmd.Flags().BoolVar(&reset, "reset", false, "drop every queued round before refilling")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceUsage = true

	return cmd
}

func seed(ctx context.Context, cfg *config.Config, reset bool) error {
	rdb, err := app.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	queue := cache.NewRoundQueue(rdb)
	if reset {
		if err := queue.Reset(ctx); err != nil {
			return err
		}
		log.Println("Round queue cleared")
	}

	added, err := app.NewRefillService(cfg, queue).Refill(ctx)
	if err != nil {
		log.Printf("Refill stopped after adding %d rounds", added)
		return err
	}

	length, err := queue.Len(ctx)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d rounds, queue now holds %d", added, length)
	return nil
}
