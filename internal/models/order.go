package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is one table visit's bill. Orders are never deleted, only moved
// through OrderStatus.
type Order struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber    int             `json:"orderNumber" gorm:"uniqueIndex;not null"`
	TableID        uuid.UUID       `json:"tableId" gorm:"type:uuid;not null;index"`
	Table          *Table          `json:"-" gorm:"foreignKey:TableID"`
	OpenedByUserID uuid.UUID       `json:"openedByUserId" gorm:"type:uuid;not null;index"`
	OpenedBy       *User           `json:"-" gorm:"foreignKey:OpenedByUserID"`
	Status         OrderStatus     `json:"orderStatus" gorm:"column:order_status;type:varchar(16);not null;default:'open';index"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(10,2);not null"`
	Items          []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time       `json:"createdAt" gorm:"index"`
	ClosedAt       *time.Time      `json:"closedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ComputeTotal sums quantity x unit price over the items that are not cancelled.
func (o *Order) ComputeTotal() decimal.Decimal {
	return SumItems(o.Items)
}

// HasPlacedItems reports whether any item still waits to be served.
func (o *Order) HasPlacedItems() bool {
	for _, item := range o.Items {
		if item.Status == ItemPlaced {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderOpen      OrderStatus = "open"
	OrderCompleted OrderStatus = "completed"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
	OrderClosed    OrderStatus = "closed"
)

// ParseOrderStatus accepts the statuses an order can be moved to.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderOpen, OrderCompleted, OrderPaid, OrderCancelled, OrderClosed:
		return st, true
	}
	return "", false
}

// IsTerminal is true for statuses that close the bill.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderPaid || s == OrderCancelled || s == OrderClosed
}
