package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table is a physical seating unit. Number is the human-facing identifier.
type Table struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Number    int         `json:"number" gorm:"uniqueIndex;not null"`
	Status    TableStatus `json:"status" gorm:"type:varchar(16);not null;default:'available'"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableActive    TableStatus = "active"
)

// Toggled returns the opposite occupancy status.
func (s TableStatus) Toggled() TableStatus {
	if s == TableAvailable {
		return TableActive
	}
	return TableAvailable
}
