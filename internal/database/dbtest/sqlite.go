// Package dbtest provides an in-memory database for repository and HTTP tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/redmonkez12/authflow/internal/database"
)

// NewSQLite opens a private in-memory SQLite database with the accounts table created.
func NewSQLite(t testing.TB) *bun.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	if _, err := db.NewCreateTable().Model((*database.Account)(nil)).Exec(context.Background()); err != nil {
		t.Fatalf("create accounts table: %v", err)
	}

	return db
}
