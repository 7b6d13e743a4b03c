package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabletrack/internal/models"
	"tabletrack/internal/repository"
	"tabletrack/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertOrder(t *testing.T, db *gorm.DB, table *models.Table, user *models.User, number int, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:    number,
		TableID:        table.ID,
		OpenedByUserID: user.ID,
		Status:         status,
		Total:          decimal.Zero,
	}
	require.NoError(t, repository.NewOrderRepository(db).Create(context.Background(), order))
	return order
}

func TestTableRepository_MaxNumberEmpty(t *testing.T) {
	db := testutil.NewDB(t)
	max, err := repository.NewTableRepository(db).MaxNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, max)
}

func TestTableRepository_DuplicateNumber(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTableRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Table{Number: 1, Status: models.TableAvailable}))
	err := repo.Create(ctx, &models.Table{Number: 1, Status: models.TableAvailable})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestTableRepository_ListWithOpenCounts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "ana", models.RoleWaiter)
	t1 := testutil.CreateTable(t, db, 1, models.TableActive)
	testutil.CreateTable(t, db, 2, models.TableAvailable)
	t3 := testutil.CreateTable(t, db, 3, models.TableActive)

	insertOrder(t, db, t1, user, 1, models.OrderOpen)
	insertOrder(t, db, t1, user, 2, models.OrderOpen)
	insertOrder(t, db, t1, user, 3, models.OrderPaid)
	insertOrder(t, db, t3, user, 4, models.OrderOpen)

	rows, err := repository.NewTableRepository(db).ListWithOpenCounts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Number)
	assert.Equal(t, int64(2), rows[0].OpenOrdersCount)
	assert.Equal(t, 2, rows[1].Number)
	assert.Equal(t, int64(0), rows[1].OpenOrdersCount)
	assert.Equal(t, models.TableAvailable, rows[1].Status)
	assert.Equal(t, int64(1), rows[2].OpenOrdersCount)
}

func TestTableRepository_GetLastAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewTableRepository(db)

	_, err := repo.GetLastForUpdate(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	testutil.CreateTable(t, db, 1, models.TableAvailable)
	last := testutil.CreateTable(t, db, 2, models.TableAvailable)

	got, err := repo.GetLastForUpdate(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, got.ID)

	require.NoError(t, repo.Delete(ctx, last.ID))
	assert.ErrorIs(t, repo.Delete(ctx, last.ID), repository.ErrNotFound)

	max, err := repo.MaxNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, max)
}

func TestProductRepository_GetByIDsAndList(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewProductRepository(db)

	coffee := testutil.CreateProduct(t, db, "Coffee", "2.50", true)
	testutil.CreateProduct(t, db, "Tea", "2.00", false)

	found, err := repo.GetByIDs(ctx, []uuid.UUID{coffee.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].Price.Equal(decimal.RequireFromString("2.50")))

	active, err := repo.List(ctx, repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Coffee", active[0].Name)

	byName, err := repo.List(ctx, repository.ProductFilter{Name: "te"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Tea", byName[0].Name)

	err = repo.Create(ctx, &models.Product{Name: "Coffee", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestOrderRepository_StatusAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewOrderRepository(db)
	user := testutil.CreateUser(t, db, "ana", models.RoleWaiter)
	table := testutil.CreateTable(t, db, 1, models.TableActive)
	order := insertOrder(t, db, table, user, 1, models.OrderOpen)

	count, err := repo.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderPaid, &now))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)
	assert.NotNil(t, got.ClosedAt)

	open, err := repo.CountOpenByTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), open)

	all, err := repo.CountByTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), all)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.OrderPaid, nil), repository.ErrNotFound)
}

func TestOrderRepository_MaxOrderNumberAndDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewOrderRepository(db)
	user := testutil.CreateUser(t, db, "ana", models.RoleWaiter)
	table := testutil.CreateTable(t, db, 1, models.TableActive)

	max, err := repo.MaxOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	insertOrder(t, db, table, user, 7, models.OrderOpen)
	max, err = repo.MaxOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, max)

	dup := &models.Order{OrderNumber: 7, TableID: table.ID, OpenedByUserID: user.ID, Status: models.OrderOpen, Total: decimal.Zero}
	assert.True(t, repository.IsUniqueViolation(repo.Create(ctx, dup)))
}

func TestOrderRepository_GetDetailed(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "ana", models.RoleWaiter)
	table := testutil.CreateTable(t, db, 4, models.TableActive)
	coffee := testutil.CreateProduct(t, db, "Coffee", "2.50", true)
	order := insertOrder(t, db, table, user, 1, models.OrderOpen)

	items := []models.OrderItem{
		{OrderID: order.ID, ProductID: coffee.ID, Quantity: 2, UnitPrice: coffee.Price, Status: models.ItemPlaced},
	}
	require.NoError(t, repository.NewOrderItemRepository(db).CreateBatch(ctx, items))

	got, err := repository.NewOrderRepository(db).GetDetailed(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Coffee", got.Items[0].Product.Name)
	require.NotNil(t, got.Table)
	assert.Equal(t, 4, got.Table.Number)
	require.NotNil(t, got.OpenedBy)
	assert.Equal(t, "ana", got.OpenedBy.Name)
	assert.True(t, got.ComputeTotal().Equal(decimal.NewFromInt(5)))
}

func TestOrderItemRepository_UpdateStatus(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := repository.NewOrderItemRepository(db)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), models.ItemServed), repository.ErrNotFound)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	store := repository.NewStore(db)
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Tables().Create(ctx, &models.Table{Number: 1, Status: models.TableAvailable}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	max, err := store.Tables().MaxNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, max)
}
