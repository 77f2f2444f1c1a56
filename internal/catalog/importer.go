package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"phonestore/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Result summarises an import run.
type Result struct {
	Created  int
	Updated  int
	Rejected int
}

// Importer upserts catalogue phones with bounded concurrency.
type Importer struct {
	phones  repository.PhoneRepository
	workers int
	logger  zerolog.Logger
}

// NewImporter creates an importer running at most workers upserts at once.
func NewImporter(phones repository.PhoneRepository, workers int, logger zerolog.Logger) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{
		phones:  phones,
		workers: workers,
		logger:  logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import upserts every phone of cat by code. The first failing upsert
// cancels the remaining ones.
func (i *Importer) Import(ctx context.Context, cat *Catalog) (Result, error) {
	for _, rejected := range cat.Rejected {
		i.logger.Warn().Int("row", rejected.Row).Err(rejected.Err).Msg("catalogue row rejected")
	}

	var created, updated atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for _, p := range cat.Phones {
		phone := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			inserted, err := i.phones.Upsert(gctx, &phone)
			if err != nil {
				return fmt.Errorf("failed to import phone %s: %w", phone.Code, err)
			}
			if inserted {
				created.Add(1)
			} else {
				updated.Add(1)
			}
			return nil
		})
	}

	result := Result{Rejected: len(cat.Rejected)}
	err := g.Wait()
	result.Created = int(created.Load())
	result.Updated = int(updated.Load())
	if err != nil {
		i.logger.Error().Err(err).Int("created", result.Created).Int("updated", result.Updated).Msg("catalogue import aborted")
		return result, err
	}

	i.logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("rejected", result.Rejected).
		Msg("catalogue imported")

	return result, nil
}

// Seed loads path through loader and imports it.
func Seed(ctx context.Context, loader Loader, importer *Importer, path string) (Result, error) {
	cat, err := loader.Load(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load catalogue: %w", err)
	}
	return importer.Import(ctx, cat)
}
