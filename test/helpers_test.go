//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MrEthical07/goSession/session"
)

// postgresDSNEnv names the environment variable that points store tests at a
// live Postgres instance. Tests needing it skip when the variable is unset.
const postgresDSNEnv = "GOSESSION_POSTGRES_DSN"

func newIntegrationRedisStore(t *testing.T) (session.Store, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := session.NewRedisStore(rdb, "gs")

	return store, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func newIntegrationSQLStore(t *testing.T) (session.Store, func()) {
	t.Helper()

	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping Postgres-backed test", postgresDSNEnv)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open failed: %v", err)
	}

	store := session.NewSQLStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	return store, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// eachStore runs fn once per reachable backend so the Store contract is
// asserted identically over Redis and Postgres.
func eachStore(t *testing.T, fn func(t *testing.T, store session.Store)) {
	t.Run("redis", func(t *testing.T) {
		store, cleanup := newIntegrationRedisStore(t)
		defer cleanup()
		fn(t, store)
	})
	t.Run("postgres", func(t *testing.T) {
		store, cleanup := newIntegrationSQLStore(t)
		defer cleanup()
		fn(t, store)
	})
}

func makeRecord(userID int64, sessionID string, secretHash [32]byte) *session.Record {
	now := time.Now()
	return &session.Record{
		ID:         sessionID,
		UserID:     userID,
		SecretHash: secretHash,
		ExpiresAt:  now.Add(time.Hour),
		DeviceInfo: "integration-suite",
		OriginAddr: "127.0.0.1",
		CreatedAt:  now,
	}
}

func hashByte(b byte) [32]byte {
	var out [32]byte
	for i := 0; i < len(out); i++ {
		out[i] = b
	}
	return out
}
