package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phonestore/internal/config"
	"phonestore/internal/guard"
	"phonestore/internal/handler"
	"phonestore/internal/router"
	"phonestore/internal/saga"
	"phonestore/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info().Str("backend", cfg.Backend).Msg("starting phonestore API server")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      newAPI(cfg, b, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newAPI wires services, handlers and routes on top of a backend.
func newAPI(cfg *config.Config, b *backend, logger zerolog.Logger) http.Handler {
	store := b.store
	runner := saga.NewRunner(b.journal, cfg.Checkout.Compensate, logger)

	cartService := service.NewCartService(store, cfg.TaxRate, logger)
	checkoutService := service.NewCheckoutService(store, runner, cfg.TaxRate, logger)
	orderService := service.NewPurchaseOrderService(store.PurchaseOrders, store.Suppliers, logger)
	catalogService := service.NewCatalogService(store.Phones, store.Kardex, logger)
	accountService := service.NewAccountService(store.Profiles, store.Invoices, logger)

	decoder := guard.NewDecoder(cfg.Auth.JWTSecret)
	if !decoder.Verifies() {
		logger.Warn().Msg("AUTH_JWT_SECRET not set, bearer tokens are decoded without signature checks")
	}

	return router.New(router.Handlers{
		Catalog:        handler.NewCatalogHandler(catalogService, logger),
		Cart:           handler.NewCartHandler(cartService, checkoutService, logger),
		PurchaseOrders: handler.NewPurchaseOrderHandler(orderService, logger),
		Account:        handler.NewAccountHandler(accountService, logger),
	}, router.Auth{
		Guard:           guard.New(cfg.Auth.LoginPath, cfg.Auth.DashboardPath),
		Decoder:         decoder,
		BackofficeRoles: cfg.Auth.BackofficeRoles,
	}, logger)
}
