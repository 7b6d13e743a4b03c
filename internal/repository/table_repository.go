package repository

import (
	"context"
	"time"

	"tabletrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableSummary is a table with the number of its open orders.
type TableSummary struct {
	ID              uuid.UUID          `json:"id"`
	Number          int                `json:"number"`
	Status          models.TableStatus `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
	OpenOrdersCount int64              `json:"openOrdersCount"`
}

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Table, error)
	GetByNumber(ctx context.Context, number int) (*models.Table, error)
	GetByNumberForUpdate(ctx context.Context, number int) (*models.Table, error)
	GetLastForUpdate(ctx context.Context) (*models.Table, error)
	MaxNumber(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListWithOpenCounts(ctx context.Context) ([]TableSummary, error)
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return translate(r.db.WithContext(ctx).Create(table).Error)
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *tableRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return r.first(r.locked(ctx).Where("id = ?", id))
}

func (r *tableRepository) GetByNumber(ctx context.Context, number int) (*models.Table, error) {
	return r.first(r.db.WithContext(ctx).Where("number = ?", number))
}

func (r *tableRepository) GetByNumberForUpdate(ctx context.Context, number int) (*models.Table, error) {
	return r.first(r.locked(ctx).Where("number = ?", number))
}

func (r *tableRepository) GetLastForUpdate(ctx context.Context) (*models.Table, error) {
	return r.first(r.locked(ctx).Order("number DESC"))
}

func (r *tableRepository) MaxNumber(ctx context.Context) (int, error) {
	var max int
	row := r.db.WithContext(ctx).Model(&models.Table{}).Select("COALESCE(MAX(number), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TableStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Table{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) ListWithOpenCounts(ctx context.Context) ([]TableSummary, error) {
	var rows []TableSummary
	err := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Select("tables.id, tables.number, tables.status, tables.created_at, "+
			"COALESCE(SUM(CASE WHEN orders.order_status = ? THEN 1 ELSE 0 END), 0) AS open_orders_count", models.OrderOpen).
		Joins("LEFT JOIN orders ON orders.table_id = tables.id").
		Group("tables.id, tables.number, tables.status, tables.created_at").
		Order("tables.number ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *tableRepository) locked(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *tableRepository) first(q *gorm.DB) (*models.Table, error) {
	var table models.Table
	if err := q.First(&table).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}
