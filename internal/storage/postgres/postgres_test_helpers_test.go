package postgres

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/eventdesk/server/internal/domain/directory"
)

var (
	sharedOnce      sync.Once
	sharedInitErr   error
	sharedContainer *postgres.PostgresContainer
	sharedPool      *pgxpool.Pool
	sharedDBURL     string
)

const sharedContainerName = "eventdesk-storage-db"

func TestMain(m *testing.M) {
	code := m.Run()
	cleanupShared()
	os.Exit(code)
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	initShared(t)
	resetDatabase(t, sharedPool)

	return sharedPool, sharedDBURL
}

func initShared(t *testing.T) {
	t.Helper()
	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		_ = os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

		container, err := postgres.Run(
			ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("eventdesk"),
			postgres.WithUsername("eventdesk"),
			postgres.WithPassword("eventdesk_dev"),
			testcontainers.WithReuseByName(sharedContainerName),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedContainer = container

		dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedDBURL = dbURL

		if err := migrateWithRetry(dbURL, 10*time.Second); err != nil {
			sharedInitErr = err
			return
		}

		pool, err := NewPool(ctx, dbURL, 10)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedPool = pool
	})

	require.NoError(t, sharedInitErr)
}

func cleanupShared() {
	if sharedPool != nil {
		sharedPool.Close()
	}
}

func resetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	require.NotNil(t, pool, "shared pool is nil")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, `
SELECT tablename
  FROM pg_tables
 WHERE schemaname = 'public'
   AND tablename <> 'schema_migrations'
 ORDER BY tablename;
`)
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		safe := strings.ReplaceAll(name, "\"", "\"\"")
		tables = append(tables, "\"public\".\""+safe+"\"")
	}
	require.NoError(t, rows.Err())

	if len(tables) == 0 {
		return
	}
	_, err = pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE;")
	require.NoError(t, err)
}

func migrateWithRetry(databaseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := MigrateUp(databaseURL, ""); err != nil {
			if time.Now().After(deadline) {
				return err
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		return nil
	}
}

type fixture struct {
	repo    *Repository
	account directory.Account
	address directory.Address
}

func newFixture(t *testing.T, ctx context.Context) fixture {
	t.Helper()
	pool, _ := setupPostgres(t, ctx)

	repo, err := NewRepository(pool)
	require.NoError(t, err)

	account, err := repo.Directory().CreateAccount(ctx, "Editor")
	require.NoError(t, err)
	address, err := repo.Directory().CreateAddress(ctx, directory.AddressParams{
		Street: "Hauptstraße", HouseNumber: "1", ZipCode: "10115", City: "Berlin",
	})
	require.NoError(t, err)

	return fixture{repo: repo, account: *account, address: *address}
}

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	v := date(y, m, d)
	return &v
}
