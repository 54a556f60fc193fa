// Command seed synchronizes curriculum documents into the database and tears
// the curriculum down again.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-curriculum/internal/platform/cache"
	"github.com/p-n-ai/pai-curriculum/internal/platform/config"
	"github.com/p-n-ai/pai-curriculum/internal/platform/database"
	"github.com/p-n-ai/pai-curriculum/internal/platform/logger"
	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:          "seed",
		Short:        "Synchronize and tear down curriculum content",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			*cfg = *loaded
			logger.New(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}

	root.AddCommand(
		newSyncCmd(cfg),
		newTeardownCmd(cfg),
		newMigrateCmd(cfg),
		newTokenCmd(cfg),
	)
	return root
}

// openEngine connects to the database (and the cache when enabled) and
// returns an engine plus a cleanup func.
func openEngine(ctx context.Context, cfg *config.Config) (*seeder.Engine, func(), error) {
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := []func(){db.Close}
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	if err := seeder.EnsureSchema(ctx, db.Pool); err != nil {
		closeAll()
		return nil, nil, err
	}
	store, err := seeder.NewPostgresStore(db.Pool)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	engineCfg := seeder.EngineConfig{
		Store:    store,
		Recorder: seeder.NewPostgresRunRecorder(db.Pool),
		LockTTL:  cfg.Seed.LockTTL,
	}
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		cleanup = append(cleanup, func() {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close cache", "error", err)
			}
		})
		engineCfg.Locker = c
	}

	return seeder.NewEngine(engineCfg), closeAll, nil
}
