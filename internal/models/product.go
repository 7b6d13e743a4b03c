package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string          `json:"name" gorm:"uniqueIndex;not null"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	IsActive  bool            `json:"isActive" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
