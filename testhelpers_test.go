package placement_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	placement "github.com/placement-labs/placement-backend"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	require.NoError(t, placement.CreateSchema(context.Background(), db))
	return db
}

func newTestConfig() *placement.Config {
	return &placement.Config{
		Port:             "0",
		Env:              "test",
		APIPrefix:        "/api",
		JWTSecret:        "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  168 * time.Hour,
	}
}

// recordingMailer captures sent mail so tests can wait for async delivery.
type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	ch   chan string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{ch: make(chan string, 8)}
}

func (m *recordingMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, to)
	m.mu.Unlock()
	m.ch <- body
	return nil
}

func (m *recordingMailer) waitForMail(t *testing.T) string {
	t.Helper()
	select {
	case body := <-m.ch:
		return body
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail delivery")
		return ""
	}
}
