package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is one product line of an order. UnitPrice is the product price
// at the moment the order was opened and is never updated.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	Product   *Product        `json:"-" gorm:"foreignKey:ProductID"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:numeric(10,2);not null"`
	Status    OrderItemStatus `json:"status" gorm:"type:varchar(16);not null;default:'placed'"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// LineTotal is quantity x unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems totals the billable lines, skipping cancelled ones.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Status == ItemCancelled {
			continue
		}
		total = total.Add(item.LineTotal())
	}
	return total
}

// OrderItemStatus is the serving state of a single line.
type OrderItemStatus string

const (
	ItemPlaced    OrderItemStatus = "placed"
	ItemServed    OrderItemStatus = "served"
	ItemCancelled OrderItemStatus = "cancelled"
)

func ParseOrderItemStatus(s string) (OrderItemStatus, bool) {
	switch st := OrderItemStatus(s); st {
	case ItemPlaced, ItemServed, ItemCancelled:
		return st, true
	}
	return "", false
}
