package testutil

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgutil "github.com/bibbank/microcred/pkg/postgres"
)

// IntegrationEnv gates tests that start containers.
const IntegrationEnv = "MICROCRED_INTEGRATION"

// RequireIntegration skips the test unless MICROCRED_INTEGRATION=1.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv(IntegrationEnv) != "1" {
		t.Skipf("set %s=1 to run container-backed tests", IntegrationEnv)
	}
}

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts a PostgreSQL container and registers its
// teardown with t.Cleanup.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("microcred_test"),
		postgres.WithUsername("microcred"),
		postgres.WithPassword("microcred"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	pc := &PostgresContainer{Container: pgContainer}
	t.Cleanup(func() { pc.terminate(t) })

	pc.DSN, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pc.Pool, err = pgxpool.New(ctx, pc.DSN)
	if err != nil {
		t.Fatalf("create pgxpool: %v", err)
	}
	if err := pgutil.HealthCheck(ctx, pc.Pool); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}

	return pc
}

func (pc *PostgresContainer) terminate(t *testing.T) {
	if pc.Pool != nil {
		pc.Pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pc.Container.Terminate(ctx); err != nil {
		t.Logf("warning: terminate postgres container: %v", err)
	}
}

// Migrate applies the up migrations stored under dir in fsys.
func (pc *PostgresContainer) Migrate(t *testing.T, fsys fs.FS, dir string) {
	t.Helper()

	if err := pgutil.Migrate(pc.DSN, fsys, dir, pgutil.Up); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}
