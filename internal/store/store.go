package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bankdesk/internal/config"
	"bankdesk/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// StateStore is the persistence boundary for the console's process-wide
// state slots: the bearer token, the signed-in profile, and the selected
// customer id. No implementation performs network calls.
type StateStore interface {
	// SetSession stores token and profile as a pair. If either is absent
	// the pair is cleared instead; the two are never persisted separately.
	SetSession(token string, profile models.Profile) error
	Token() (string, bool, error)
	Profile() (models.Profile, bool, error)

	SelectedCustomerID() (string, bool, error)
	SetSelectedCustomerID(id string) error
	ClearSelectedCustomerID() error

	// Clear removes the session pair and the selected customer id.
	Clear() error

	// RecordEvent appends to the local activity log. Failures are the
	// caller's to ignore; the log is diagnostic only.
	RecordEvent(action, resource, resourceID, detail string) error
}

// Store is the sqlite-backed StateStore.
type Store struct {
	db     *gorm.DB
	sealer *Sealer
}

var _ StateStore = (*Store)(nil)

// Open connects to the state database at cfg.Path, creating parent
// directories as needed, and brings the schema up to date. When a
// passphrase is configured the bearer token is sealed at rest.
func Open(cfg *config.StateConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := migrateSchema(db); err != nil {
		return nil, err
	}

	var sealer *Sealer
	if cfg.Passphrase != "" {
		sealer = NewSealer(cfg.Passphrase)
	}

	return &Store{db: db, sealer: sealer}, nil
}

// NewWithDB wraps an already-open gorm connection. Schema management is the
// caller's responsibility; used by tests and by the sqlmock harness.
func NewWithDB(db *gorm.DB, sealer *Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

// migrateSchema runs the embedded SQL migrations, falling back to GORM
// AutoMigrate when the migration runner cannot (e.g. a database handle that
// does not expose its *sql.DB).
func migrateSchema(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err == nil {
		if _, err := RunMigrations(sqlDB); err == nil {
			return nil
		} else {
			log.Printf("Warning: migration runner failed: %v", err)
			log.Println("Falling back to GORM AutoMigrate...")
		}
	}

	if err := db.AutoMigrate(&StateRecord{}, &ConsoleEvent{}); err != nil {
		return fmt.Errorf("failed to migrate state schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) SetSession(token string, profile models.Profile) error {
	if token == "" || profile.IsZero() {
		return s.Clear()
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	tokenValue := []byte(token)
	if s.sealer != nil {
		if tokenValue, err = s.sealer.Seal(tokenValue); err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, KeyAuthToken, tokenValue); err != nil {
			return err
		}
		return upsert(tx, KeyUserProfile, profileJSON)
	})
}

func (s *Store) Token() (string, bool, error) {
	value, ok, err := s.get(KeyAuthToken)
	if err != nil || !ok {
		return "", false, err
	}

	if s.sealer != nil {
		if value, err = s.sealer.Unseal(value); err != nil {
			return "", false, fmt.Errorf("failed to unseal token: %w", err)
		}
	}

	return string(value), true, nil
}

func (s *Store) Profile() (models.Profile, bool, error) {
	var profile models.Profile

	value, ok, err := s.get(KeyUserProfile)
	if err != nil || !ok {
		return profile, false, err
	}

	if err := json.Unmarshal(value, &profile); err != nil {
		return models.Profile{}, false, fmt.Errorf("failed to parse stored profile: %w", err)
	}
	return profile, true, nil
}

func (s *Store) SelectedCustomerID() (string, bool, error) {
	value, ok, err := s.get(KeySelectedCustomer)
	if err != nil || !ok {
		return "", false, err
	}
	return string(value), true, nil
}

func (s *Store) SetSelectedCustomerID(id string) error {
	if id == "" {
		return s.ClearSelectedCustomerID()
	}
	return upsert(s.db, KeySelectedCustomer, []byte(id))
}

func (s *Store) ClearSelectedCustomerID() error {
	return s.delete(KeySelectedCustomer)
}

func (s *Store) Clear() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		keys := []string{KeyAuthToken, KeyUserProfile, KeySelectedCustomer}
		if err := tx.Where("key IN ?", keys).Delete(&StateRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear state: %w", err)
		}
		return nil
	})
}

func (s *Store) RecordEvent(action, resource, resourceID, detail string) error {
	event := &ConsoleEvent{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
	}

	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record console event: %w", err)
	}
	return nil
}

// RecentEvents returns the newest entries of the activity log.
func (s *Store) RecentEvents(limit int) ([]ConsoleEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	var events []ConsoleEvent
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to load console events: %w", err)
	}
	return events, nil
}

func (s *Store) get(key string) ([]byte, bool, error) {
	var record StateRecord
	err := s.db.First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read state record %s: %w", key, err)
	}
	return record.Value, true, nil
}

func (s *Store) delete(key string) error {
	if err := s.db.Delete(&StateRecord{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete state record %s: %w", key, err)
	}
	return nil
}

func upsert(tx *gorm.DB, key string, value []byte) error {
	record := StateRecord{Key: key, Value: value, UpdatedAt: time.Now().UTC()}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write state record %s: %w", key, err)
	}
	return nil
}
