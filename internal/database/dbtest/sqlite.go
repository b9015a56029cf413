package dbtest

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/jam-build-revdb/internal/config"
	"github.com/localnerve/jam-build-revdb/internal/database"
)

// NewSQLite returns a migrated in-memory SQLite database that is closed
// when the test ends.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        ":memory:",
		DBConnectionLimit: 1,
		LogLevel:          "ERROR",
	}
	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
