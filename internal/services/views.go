package services

import (
	"time"

	"tabletrack/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemView struct {
	ID          uuid.UUID              `json:"id"`
	ProductID   uuid.UUID              `json:"productId"`
	ProductName string                 `json:"productName"`
	Quantity    int                    `json:"quantity"`
	UnitPrice   decimal.Decimal        `json:"unitPrice"`
	LineTotal   decimal.Decimal        `json:"lineTotal"`
	Status      models.OrderItemStatus `json:"status"`
}

type OrderView struct {
	ID             uuid.UUID          `json:"id"`
	OrderNumber    int                `json:"orderNumber"`
	TableID        uuid.UUID          `json:"tableId"`
	TableNumber    int                `json:"tableNumber"`
	OpenedByUserID uuid.UUID          `json:"openedByUserId"`
	WaiterName     string             `json:"waiterName"`
	OrderStatus    models.OrderStatus `json:"orderStatus"`
	Total          decimal.Decimal    `json:"total"`
	CreatedAt      time.Time          `json:"createdAt"`
	ClosedAt       *time.Time         `json:"closedAt"`
	Items          []OrderItemView    `json:"items"`
}

type TableDetails struct {
	ID        uuid.UUID          `json:"id"`
	Number    int                `json:"number"`
	Status    models.TableStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	Orders    []OrderView        `json:"orders"`
}

// NewOrderView flattens a preloaded order. The total is always recomputed
// from the items rather than read from the stored column.
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		TableID:        order.TableID,
		OpenedByUserID: order.OpenedByUserID,
		OrderStatus:    order.Status,
		Total:          order.ComputeTotal(),
		CreatedAt:      order.CreatedAt,
		ClosedAt:       order.ClosedAt,
		Items:          make([]OrderItemView, 0, len(order.Items)),
	}
	if order.Table != nil {
		view.TableNumber = order.Table.Number
	}
	if order.OpenedBy != nil {
		view.WaiterName = order.OpenedBy.Name
	}
	for _, item := range order.Items {
		iv := OrderItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
			Status:    item.Status,
		}
		if item.Product != nil {
			iv.ProductName = item.Product.Name
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

func newOrderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views
}
