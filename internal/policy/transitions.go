package policy

import (
	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
)

// OrderTransitions is the default guard for order status changes.
//
// Paid, cancelled and closed orders are frozen. An order cannot be completed
// while an item is still placed, and a completed order only moves on to a
// terminal status.
func OrderTransitions(order *models.Order, next models.OrderStatus) error {
	from := order.Status
	if from == next {
		return nil
	}
	if from.IsTerminal() {
		return apperrors.NewPreconditionFailed("order %d is %s and can no longer change", order.OrderNumber, from)
	}

	switch next {
	case models.OrderOpen:
		return apperrors.NewPreconditionFailed("order %d cannot be reopened", order.OrderNumber)
	case models.OrderCompleted:
		if order.HasPlacedItems() {
			return apperrors.NewPreconditionFailed("order %d still has items waiting to be served", order.OrderNumber)
		}
	}
	return nil
}
