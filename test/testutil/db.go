package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/db"
)

// OpenTestDB connects to the postgres instance named by TEST_DB_HOST and
// applies migrations. Tests are skipped when the variable is unset. The
// returned cleanup truncates every table so runs stay independent.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "docuchat",
		Password: "docuchat_pass",
		DBName:   "docuchat_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	reset := func() {
		_, err := conn.Exec(`TRUNCATE chat_documents, messages, chats, chunks, documents, users`)
		if err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
	reset()
	return conn, func() {
		reset()
		_ = conn.Close()
	}
}
