package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phonestore/internal/config"
	"phonestore/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteConfig(baseURL string) *config.Config {
	return &config.Config{
		Backend: config.BackendRemote,
		TaxRate: decimal.RequireFromString("0.15"),
		Remote:  config.RemoteConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		Checkout: config.CheckoutConfig{
			Compensate: true,
		},
		Auth: config.AuthConfig{
			BackofficeRoles: []string{"ADMIN"},
			LoginPath:       "/auth/login",
			DashboardPath:   "/dashboard",
		},
	}
}

func TestNewAPI_RemoteBackend(t *testing.T) {
	var paths []string
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {
			"items": [{"id_celular": 7, "codigo": "GX-S24", "marca": "Samsung", "modelo": "Galaxy S24", "precio_venta": "999.00", "stock_actual": 3}],
			"meta": {"totalItems": 1, "itemCount": 1, "itemsPerPage": 10, "totalPages": 1, "currentPage": 1}
		}}`))
	}))
	defer backendSrv.Close()

	cfg := remoteConfig(backendSrv.URL)
	b, err := openBackend(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.close()

	assert.Nil(t, b.store.Journal)
	assert.NotNil(t, b.journal)

	api := newAPI(cfg, b, zerolog.Nop())

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Catalogue is read from the backend", func(t *testing.T) {
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/phones", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var page model.Page[model.Phone]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, "7", page.Items[0].ID)
		assert.Equal(t, "GX-S24", page.Items[0].Code)
		assert.Contains(t, paths, "/celulares")
	})

	t.Run("Cart requires a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOpenBackend_InvalidRemoteURL(t *testing.T) {
	cfg := remoteConfig("not a url")

	_, err := openBackend(context.Background(), cfg, zerolog.Nop())

	require.Error(t, err)
}

func TestOpenBackend_Unknown(t *testing.T) {
	cfg := remoteConfig("http://localhost")
	cfg.Backend = "sqlite"

	_, err := openBackend(context.Background(), cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "migrate", "seed-catalog", "check-db"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}
