// Package persistencetest provides in-memory databases for tests.
package persistencetest

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/household-ledger/backend/internal/integration/persistence/model"
)

// Open opens a private in-memory SQLite database with every model migrated.
// The returned function closes it.
//
// A single connection is kept open, so code under test must run all queries
// of a transaction through the transaction's context.
func Open() (*gorm.DB, func() error, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dbSQL, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	dbSQL.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		_ = dbSQL.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		_ = dbSQL.Close()
		return nil, nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, dbSQL.Close, nil
}

// NewDB opens a database with Open and closes it when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, closeDB, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = closeDB()
	})

	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *gorm.DB, table string) int64 {
	t.Helper()

	var count int64
	if err := db.Table(table).Count(&count).Error; err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}
