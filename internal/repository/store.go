package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store hands out repositories bound to one connection or one transaction.
// Repositories obtained from the Store passed to Transaction's callback see
// the transaction; the outer Store must not be used inside the callback.
type Store interface {
	Users() UserRepository
	Tables() TableRepository
	Products() ProductRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository           { return NewUserRepository(s.db) }
func (s *store) Tables() TableRepository         { return NewTableRepository(s.db) }
func (s *store) Products() ProductRepository     { return NewProductRepository(s.db) }
func (s *store) Orders() OrderRepository         { return NewOrderRepository(s.db) }
func (s *store) OrderItems() OrderItemRepository { return NewOrderItemRepository(s.db) }

// Transaction commits when fn returns nil and rolls back otherwise.
// fn's error is returned unchanged.
func (s *store) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
