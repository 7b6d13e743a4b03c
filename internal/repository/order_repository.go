package repository

import (
	"context"
	"time"

	"tabletrack/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetDetailed(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MaxOrderNumber(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, closedAt *time.Time) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	CountOpen(ctx context.Context) (int64, error)
	CountOpenByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	CountByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	ListDetailed(ctx context.Context) ([]models.Order, error)
	ListByTableDetailed(ctx context.Context, tableID uuid.UUID) ([]models.Order, error)
	ListForStats(ctx context.Context, from, to *time.Time) ([]models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error)
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetByIDForUpdate loads the order and its items with the order row locked.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetDetailed loads the order with items, products, table and waiter.
func (r *orderRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.detailed(ctx).First(&order, "orders.id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) MaxOrderNumber(ctx context.Context) (int, error) {
	var max int
	row := r.db.WithContext(ctx).Model(&models.Order{}).Select("COALESCE(MAX(order_number), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, closedAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"order_status": status, "closed_at": closedAt})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("total", total)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("order_status = ?", models.OrderOpen).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountOpenByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("table_id = ? AND order_status = ?", tableID, models.OrderOpen).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) CountByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("table_id = ?", tableID).Count(&count).Error
	return count, err
}

// ListDetailed returns every order newest first.
func (r *orderRepository) ListDetailed(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.detailed(ctx).Order("orders.created_at DESC, orders.order_number DESC").Find(&orders).Error
	return orders, err
}

// ListByTableDetailed returns the table's orders oldest first.
func (r *orderRepository) ListByTableDetailed(ctx context.Context, tableID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.detailed(ctx).
		Where("orders.table_id = ?", tableID).
		Order("orders.created_at ASC, orders.order_number ASC").
		Find(&orders).Error
	return orders, err
}

// ListForStats returns orders with their waiter, optionally bounded to
// the half-open window [from, to).
func (r *orderRepository) ListForStats(ctx context.Context, from, to *time.Time) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Preload("OpenedBy")
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}

	var orders []models.Order
	err := q.Order("created_at ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Product").
		Preload("Table").
		Preload("OpenedBy")
}
