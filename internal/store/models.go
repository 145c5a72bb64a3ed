package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

// Fixed storage keys for the single process-wide state slots.
const (
	KeyAuthToken        = "auth_token"
	KeyUserProfile      = "user_profile"
	KeySelectedCustomer = "selected_cust_id"
)

// StateRecord is one persisted slot: the bearer token, the serialized
// profile, or the selected customer id. Writes overwrite unconditionally.
type StateRecord struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ConsoleEvent is one row of the local activity log: which console operation
// ran, against what, and when. Purely diagnostic; never read by controllers.
type ConsoleEvent struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Action     string    `gorm:"type:varchar(64);not null;index"`
	Resource   string    `gorm:"type:varchar(64)"`
	ResourceID string    `gorm:"type:varchar(64)"`
	Detail     string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// BeforeCreate hook for ConsoleEvent
func (e *ConsoleEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
