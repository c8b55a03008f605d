package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"waterreminder/internal/db/migrations"

	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CreateTestPool connects to TEST_POSTGRESQL_URL with migrations applied.
// The test is skipped when the variable is not set.
func CreateTestPool(t *testing.T) *pgxpool.Pool {
	connString := os.Getenv("TEST_POSTGRESQL_URL")
	if connString == "" {
		t.Skip("TEST_POSTGRESQL_URL is not set.")
	}
	if err := migrations.Apply(connString); err != nil {
		panic(fmt.Sprintf("Could not apply DB migrations %v.", err))
	}

	pool, err := pgxpool.Connect(context.Background(), connString)
	if err != nil {
		panic("Could not connect to the database.")
	}
	return pool
}

func TruncateTables(pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), "TRUNCATE kv_entries")
	if err != nil {
		panic("Could not truncate DB tables.")
	}
}

// CreateTestRedis connects to TEST_REDIS_URL, skipping the test when it is not set.
func CreateTestRedis(t *testing.T) *redis.Client {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set.")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		panic(fmt.Sprintf("Could not parse TEST_REDIS_URL %v.", err))
	}
	return redis.NewClient(opts)
}
