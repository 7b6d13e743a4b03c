package services

import (
	"context"

	"tabletrack/internal/models"
	"tabletrack/pkg/kitchen"
)

// Notifier pushes the current open-order count to connected clients.
type Notifier interface {
	Broadcast(ctx context.Context, openCount int64)
}

// EventPublisher forwards order events to the kitchen feed.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event kitchen.Event) error
}

// IdempotencyStore remembers client request keys for OpenOrder.
//
// Reserve claims key. When the key was free it returns reserved=true. When it
// was already claimed it returns the order id stored by Complete, or "" while
// the first request is still running.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (orderID string, reserved bool, err error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

// TransitionGuard vetoes an order status change. It runs inside the update
// transaction with the order and its items loaded.
type TransitionGuard func(order *models.Order, next models.OrderStatus) error

type noopNotifier struct{}

func (noopNotifier) Broadcast(context.Context, int64) {}
