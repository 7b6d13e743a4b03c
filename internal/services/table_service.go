package services

import (
	"context"
	"errors"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
	"tabletrack/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RemovedTable struct {
	DeletedNumber int       `json:"deletedNumber"`
	DeletedID     uuid.UUID `json:"deletedId"`
}

type TableService interface {
	ListTables(ctx context.Context) ([]repository.TableSummary, error)
	GetTable(ctx context.Context, number int) (*models.Table, error)
	CreateNextTable(ctx context.Context) (*models.Table, error)
	RemoveLastTable(ctx context.Context) (*RemovedTable, error)
	ToggleStatus(ctx context.Context, number int) (*models.Table, error)
}

type tableService struct {
	store   repository.Store
	log     *zap.Logger
	retries int
}

func NewTableService(store repository.Store, log *zap.Logger, retries int) TableService {
	if log == nil {
		log = zap.NewNop()
	}
	if retries < 1 {
		retries = 3
	}
	return &tableService{store: store, log: log, retries: retries}
}

func (s *tableService) ListTables(ctx context.Context) ([]repository.TableSummary, error) {
	tables, err := s.store.Tables().ListWithOpenCounts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tables")
	}
	return tables, nil
}

func (s *tableService) GetTable(ctx context.Context, number int) (*models.Table, error) {
	table, err := s.store.Tables().GetByNumber(ctx, number)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "failed to load table")
	}
	return table, nil
}

// CreateNextTable appends a table numbered one past the current maximum.
// Losing the race for a number recomputes it, up to the retry bound.
func (s *tableService) CreateNextTable(ctx context.Context) (*models.Table, error) {
	for attempt := 1; ; attempt++ {
		var table *models.Table
		err := s.store.Transaction(ctx, func(tx repository.Store) error {
			max, err := tx.Tables().MaxNumber(ctx)
			if err != nil {
				return err
			}
			table = &models.Table{Number: max + 1, Status: models.TableAvailable}
			return tx.Tables().Create(ctx, table)
		})
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Wrap(err, "failed to create table")
		}
		if attempt >= s.retries {
			s.log.Warn("table number retries exhausted", zap.Int("attempts", attempt))
			return nil, apperrors.NewConflict("could not assign a table number, please retry")
		}
		s.log.Debug("table number taken, retrying", zap.Int("attempt", attempt))
	}
}

func (s *tableService) RemoveLastTable(ctx context.Context) (*RemovedTable, error) {
	var removed RemovedTable
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		table, err := tx.Tables().GetLastForUpdate(ctx)
		if err != nil {
			return notFoundOr(err, "no tables to remove", "failed to load table")
		}
		if table.Status != models.TableAvailable {
			return apperrors.NewPreconditionFailed("table %d is not available", table.Number)
		}

		history, err := tx.Orders().CountByTable(ctx, table.ID)
		if err != nil {
			return apperrors.Wrap(err, "failed to count table orders")
		}
		if history > 0 {
			return apperrors.NewPreconditionFailed("table %d has order history", table.Number)
		}

		if err := tx.Tables().Delete(ctx, table.ID); err != nil {
			return apperrors.Wrap(err, "failed to delete table")
		}
		removed = RemovedTable{DeletedNumber: table.Number, DeletedID: table.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func (s *tableService) ToggleStatus(ctx context.Context, number int) (*models.Table, error) {
	var table *models.Table
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		t, err := tx.Tables().GetByNumberForUpdate(ctx, number)
		if err != nil {
			return notFoundOr(err, "table not found", "failed to load table")
		}
		t.Status = t.Status.Toggled()
		if err := tx.Tables().UpdateStatus(ctx, t.ID, t.Status); err != nil {
			return apperrors.Wrap(err, "failed to update table status")
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}
