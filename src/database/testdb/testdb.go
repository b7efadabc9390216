// Package testdb connects integration tests to the database configured in
// settings/appsettings.TESTING.yaml.
package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"brokerage/src/config"
	"brokerage/src/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

// lockKey serializes tests of different packages sharing the database.
const lockKey = 727001

var (
	once     sync.Once
	testDB   *pgxpool.Pool
	setupErr error
)

// SetupTestDB returns a shared pool and truncates every table. The caller
// holds an advisory lock on the database until the test ends. The test is
// skipped when the database cannot be reached.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	once.Do(func() {
		cfg, err := loadTestConfig()
		if err != nil {
			setupErr = err
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		testDB, setupErr = database.SetupDB(ctx, cfg)
	})
	if setupErr != nil {
		t.Skipf("test database unavailable: %v", setupErr)
	}

	conn, err := testDB.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Failed to acquire connection: %v", err)
	}
	if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		conn.Release()
		t.Fatalf("Failed to lock test database: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		conn.Release()
	})

	TruncateTables(t, testDB)
	return testDB
}

func loadTestConfig() (*config.Config, error) {
	serviceRoot, err := getServiceRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to get service root path: %w", err)
	}

	cfg, err := config.LoadConfig(filepath.Join(serviceRoot, "settings"), "TESTING")
	if err != nil {
		return nil, fmt.Errorf("failed to load test configuration: %w", err)
	}
	return cfg, nil
}

// getServiceRoot walks up from the working directory to the go.mod.
func getServiceRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}

		parent := filepath.Dir(wd)
		if parent == wd {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		wd = parent
	}
}

// TruncateTables empties the trading tables and resets their sequences.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if pool == nil {
		t.Fatal("Database connection not initialized")
	}

	_, err := pool.Exec(context.Background(),
		`TRUNCATE TABLE transactions, holdings, assets, companies, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// CreateUser inserts a user with the "user" role and the given balance.
func CreateUser(t *testing.T, pool *pgxpool.Pool, username, balance string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, role_id, balance)
		SELECT $1, $1 || '@example.com', id, $2::numeric FROM roles WHERE name = 'user'
		RETURNING id`, username, balance).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return id
}

// CreateAsset inserts an asset whose issued count equals its available count.
func CreateAsset(t *testing.T, pool *pgxpool.Pool, ticker, price, available string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO assets (ticker, name, price, available_count, issued_count)
		VALUES ($1, $1, $2::numeric, $3::numeric, $3::numeric)
		RETURNING id`, ticker, price, available).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create asset %s: %v", ticker, err)
	}
	return id
}
