package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"phonestore/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, applies the migrations and
// opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	migrator, err := database.NewMigratorFromURL(connStr, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	migrator.Close()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedPhones inserts the test catalogue.
func SeedPhones(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	phones := []struct {
		id    string
		code  string
		brand string
		model string
		price string
		stock int
	}{
		{"PH-1", "SM-S24", "Samsung", "Galaxy S24", "100.00", 5},
		{"PH-2", "AP-IP15", "Apple", "iPhone 15", "50.00", 1},
		{"PH-3", "GO-PX8", "Google", "Pixel 8", "120.00", 0},
	}

	for _, p := range phones {
		_, err := pool.Exec(ctx, `
			INSERT INTO phones (id, code, brand, model, sale_price, purchase_cost, stock)
			VALUES ($1, $2, $3, $4, $5, 0, $6)`,
			p.id, p.code, p.brand, p.model, decimal.RequireFromString(p.price), p.stock,
		)
		if err != nil {
			t.Fatalf("failed to seed phone %s: %v", p.id, err)
		}
	}
}

// SeedSupplier inserts a supplier.
func SeedSupplier(t *testing.T, pool *pgxpool.Pool, id string) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `INSERT INTO suppliers (id, name) VALUES ($1, 'Distribuidora Norte')`, id)
	if err != nil {
		t.Fatalf("failed to seed supplier %s: %v", id, err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"checkout_journal", "purchase_order_lines", "purchase_orders", "suppliers",
		"invoice_lines", "invoices", "cart_lines", "carts", "customer_profiles",
		"kardex", "phones",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// StockOf returns the current stock of a phone.
func StockOf(t *testing.T, pool *pgxpool.Pool, phoneID string) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), `SELECT stock FROM phones WHERE id = $1`, phoneID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock of %s: %v", phoneID, err)
	}
	return stock
}
