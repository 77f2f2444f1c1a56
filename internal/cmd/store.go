package cmd

import (
	"context"
	"fmt"

	"phonestore/internal/config"
	"phonestore/internal/database"
	"phonestore/internal/remote"
	"phonestore/internal/repository"
	"phonestore/internal/saga"

	"github.com/rs/zerolog"
)

// backend is the store selected by STORE_BACKEND plus the journal the
// checkout saga writes to.
type backend struct {
	store   *repository.Store
	journal saga.Journal
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store := repository.NewPostgresStore(pool, logger)
		return &backend{store: store, journal: store.Journal, close: pool.Close}, nil

	case config.BackendRemote:
		client, err := remote.NewClient(remote.Config{
			BaseURL: cfg.Remote.BaseURL,
			Token:   cfg.Remote.Token,
			Timeout: cfg.Remote.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remote client: %w", err)
		}
		logger.Info().Str("base_url", cfg.Remote.BaseURL).Msg("using remote storefront backend")
		return &backend{store: remote.NewStore(client), journal: saga.NewLogJournal(logger), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
