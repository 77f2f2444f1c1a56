package cmd

import (
	"fmt"

	"phonestore/internal/catalog"

	"github.com/spf13/cobra"
)

var (
	seedFile    string
	seedWorkers int
)

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Import phones from a gzipped CSV catalogue",
	Long: `Import phones from a gzipped CSV catalogue into the configured backend.
Phones are matched by code: new codes are created with their stock, known
codes get their description and prices updated.

With S3_ENABLED the file is read from S3_BUCKET under S3_PREFIX first and
from the local file system when that fails.`,
	RunE: runSeedCatalog,
}

func init() {
	rootCmd.AddCommand(seedCatalogCmd)

	seedCatalogCmd.Flags().StringVar(&seedFile, "file", "", "Catalogue file (defaults to CATALOG_FILE)")
	seedCatalogCmd.Flags().IntVar(&seedWorkers, "workers", 0, "Concurrent upserts (defaults to CATALOG_WORKERS)")
}

func runSeedCatalog(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	file := cfg.Catalog.File
	if seedFile != "" {
		file = seedFile
	}
	workers := cfg.Catalog.Workers
	if seedWorkers > 0 {
		workers = seedWorkers
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
			s3Loader = nil
		}
	}
	loader := catalog.NewFallbackLoader(s3Loader, catalog.NewFileLoader(logger), cfg.S3.Prefix, logger)

	result, err := catalog.Seed(ctx, loader, catalog.NewImporter(b.store.Phones, workers, logger), file)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, rejected %d\n", result.Created, result.Updated, result.Rejected)
	return nil
}
