// Package dbtest runs a throwaway Postgres for integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/client"
	_ "github.com/lib/pq"
	"github.com/maheshrc27/storyflow/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type Postgres struct {
	container *postgres.PostgresContainer
	DB        *sql.DB
}

// RequireDocker skips t in -short mode or when no Docker daemon answers.
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client init error: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		t.Skipf("docker daemon is not reachable: %v", err)
	}
}

// Start launches postgres:15-alpine and applies the schema migrations.
func Start(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("storyflow_test"),
		postgres.WithUsername("storyflow"),
		postgres.WithPassword("storyflow"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	pg := &Postgres{container: container}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pg.Close(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pg.DB, err = sql.Open("postgres", dsn)
	if err != nil {
		pg.Close(ctx)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pg.DB.PingContext(ctx); err != nil {
		pg.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := database.ApplyMigrations(pg.DB); err != nil {
		pg.Close(ctx)
		return nil, err
	}

	return pg, nil
}

// Reset empties every table and restarts the id sequences.
func (pg *Postgres) Reset(ctx context.Context) error {
	_, err := pg.DB.ExecContext(ctx,
		`TRUNCATE TABLE story_events, posts, stories, platforms, restaurants, organizations RESTART IDENTITY CASCADE`)
	return err
}

func (pg *Postgres) Close(ctx context.Context) error {
	if pg.DB != nil {
		pg.DB.Close()
	}
	if pg.container != nil {
		return pg.container.Terminate(ctx)
	}
	return nil
}

// SeedPlatform inserts an organization, a restaurant and a platform account
// and returns the platform id.
func (pg *Postgres) SeedPlatform(ctx context.Context, key, login, password string) (int64, error) {
	var orgID, restaurantID, platformID int64

	err := pg.DB.QueryRowContext(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id`, "Bistro Group").Scan(&orgID)
	if err != nil {
		return 0, err
	}

	err = pg.DB.QueryRowContext(ctx,
		`INSERT INTO restaurants (name, organization_id) VALUES ($1, $2) RETURNING id`, "Bistro", orgID).Scan(&restaurantID)
	if err != nil {
		return 0, err
	}

	err = pg.DB.QueryRowContext(ctx,
		`INSERT INTO platforms (restaurant_id, platform_key, login, password) VALUES ($1, $2, $3, $4) RETURNING id`,
		restaurantID, key, login, password).Scan(&platformID)
	if err != nil {
		return 0, err
	}

	return platformID, nil
}
