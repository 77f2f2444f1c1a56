package cmd

import (
	"fmt"
	"strings"

	"phonestore/internal/database"

	"github.com/spf13/cobra"
)

var checkDBCmd = &cobra.Command{
	Use:   "check-db",
	Short: "Check the PostgreSQL connection and list the schema tables",
	RunE:  runCheckDB,
}

func init() {
	rootCmd.AddCommand(checkDBCmd)
}

func runCheckDB(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	info, err := database.Inspect(ctx, pool)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "connected to %s as %s\n", info.Database, info.User)
	fmt.Fprintf(out, "server: %s\n", info.Version)
	if len(info.Tables) == 0 {
		fmt.Fprintln(out, "no tables found, run: phonestore migrate up")
		return nil
	}
	fmt.Fprintf(out, "tables (%d): %s\n", len(info.Tables), strings.Join(info.Tables, ", "))
	return nil
}
