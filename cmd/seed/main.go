package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/crm-backend/internal/config"
	"github.com/yungbote/crm-backend/internal/data/aggregates"
	"github.com/yungbote/crm-backend/internal/data/db"
	"github.com/yungbote/crm-backend/internal/data/repos"
	"github.com/yungbote/crm-backend/internal/platform/logger"
	"github.com/yungbote/crm-backend/internal/seed"
)

func main() {
	reset := flag.Bool("reset", false, "delete existing orders, products and customers first")
	flag.Parse()

	if err := run(context.Background(), *reset); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := db.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("init %s: %w", cfg.DBDriver, err)
	}
	defer store.Close()
	if err := store.AutoMigrateAll(); err != nil {
		return fmt.Errorf("%s automigrate: %w", cfg.DBDriver, err)
	}

	_, err = seed.Run(ctx, log, aggregates.NewGormTxRunner(store.DB()), repos.New(store.DB(), log), reset)
	return err
}
