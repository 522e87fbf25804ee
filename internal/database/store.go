package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gymdesk/backend/internal/config"
	"github.com/gymdesk/backend/internal/store"
)

// InitStore opens the ledger store selected by store.driver.
func InitStore(ctx context.Context, cfg *config.CashierConfig) (store.Store, error) {
	switch cfg.StoreDriver {
	case "bolt":
		s, err := store.NewBoltStore(cfg.BoltPath, openTimeout(cfg))
		if err != nil {
			return nil, err
		}
		log.Printf("Bolt store opened at %s", cfg.BoltPath)
		return s, nil

	case "postgres", "":
		db, err := InitDB()
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return store.NewPostgresStore(db, store.RetryPolicy{
			Attempts: cfg.RetryAttempts,
			Backoff:  cfg.RetryBackoff,
		}), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openTimeout(cfg *config.CashierConfig) time.Duration {
	if cfg.StoreTimeout > 0 {
		return cfg.StoreTimeout
	}
	return time.Second
}
