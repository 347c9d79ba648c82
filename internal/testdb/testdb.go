// Package testdb opens isolated in-memory SQLite ledgers for tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/pkg/database"
)

var seq atomic.Int64

// New returns a migrated, empty database that is closed when t finishes.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:stockpile_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
