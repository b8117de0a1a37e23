package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/persistence"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory episode store that closes at test cleanup
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to open in-memory episode store: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewTestEpisodeRepository returns a gorm episode repository over NewTestDB
func NewTestEpisodeRepository(t testing.TB) *persistence.GormEpisodeRepository {
	t.Helper()
	return persistence.NewGormEpisodeRepository(NewTestDB(t))
}
