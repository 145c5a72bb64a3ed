package store

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestStore opens an in-memory state store with the schema migrated.
func SetupTestStore(t *testing.T) *Store {
	t.Helper()
	return setupTestStoreWithSealer(t, nil)
}

// SetupSealedTestStore opens an in-memory state store that seals the token
// at rest with the given passphrase.
func SetupSealedTestStore(t *testing.T, passphrase string) *Store {
	t.Helper()
	return setupTestStoreWithSealer(t, NewSealer(passphrase))
}

func setupTestStoreWithSealer(t *testing.T, sealer *Sealer) *Store {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to open test state database: %v", err)
	}

	if err := db.AutoMigrate(&StateRecord{}, &ConsoleEvent{}); err != nil {
		t.Fatalf("failed to migrate test state database: %v", err)
	}

	s := NewWithDB(db, sealer)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
