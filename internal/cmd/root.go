// Package cmd holds the phonestore command line.
package cmd

import (
	"fmt"
	"os"

	"phonestore/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phonestore",
	Short: "Phone store backend for the storefront",
	Long: `phonestore serves the storefront API: the phone catalogue, customer carts,
checkout into invoices and the back-office purchase order workflow.

Data lives either in PostgreSQL (STORE_BACKEND=postgres) or behind the
storefront REST backend (STORE_BACKEND=remote).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the logger every command uses.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, config.NewLogger(cfg.Logger), nil
}
