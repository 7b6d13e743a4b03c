package services

import (
	"context"
	"errors"
	"math"
	"time"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
	"tabletrack/internal/repository"
	"tabletrack/pkg/kitchen"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenOrderItem carries Quantity as a float; OpenOrder accepts whole
// numbers only.
type OpenOrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

const maxQuantity = math.MaxInt32

type OpenOrderRequest struct {
	TableID        string          `json:"tableId"`
	OpenedByUserID string          `json:"openedByUserId"`
	Items          []OpenOrderItem `json:"items"`
	IdempotencyKey string          `json:"-"`
}

type OrderService interface {
	OpenOrder(ctx context.Context, req OpenOrderRequest) (*OrderView, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*OrderView, error)
	UpdateOrderItemStatus(ctx context.Context, itemID, status string) (*OrderItemView, error)
	GetTableWithOrders(ctx context.Context, tableNumber int) (*TableDetails, error)
	ListOrders(ctx context.Context) ([]OrderView, error)
	GetOpenOrderCount(ctx context.Context) (int64, error)
}

type OrderOption func(*orderService)

func WithEventPublisher(p EventPublisher) OrderOption {
	return func(s *orderService) { s.events = p }
}

func WithIdempotency(store IdempotencyStore) OrderOption {
	return func(s *orderService) { s.idempotency = store }
}

func WithTransitionGuard(guard TransitionGuard) OrderOption {
	return func(s *orderService) { s.guard = guard }
}

func WithLogger(log *zap.Logger) OrderOption {
	return func(s *orderService) { s.log = log }
}

// WithOrderNumberRetries bounds how many times OpenOrder retries after
// losing an order number race.
func WithOrderNumberRetries(n int) OrderOption {
	return func(s *orderService) {
		if n > 0 {
			s.retries = n
		}
	}
}

func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) { s.now = now }
}

type orderService struct {
	store       repository.Store
	notifier    Notifier
	events      EventPublisher
	idempotency IdempotencyStore
	guard       TransitionGuard
	log         *zap.Logger
	retries     int
	now         func() time.Time
}

func NewOrderService(store repository.Store, notifier Notifier, opts ...OrderOption) OrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	s := &orderService{
		store:    store,
		notifier: notifier,
		log:      zap.NewNop(),
		retries:  3,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
}

func (s *orderService) OpenOrder(ctx context.Context, req OpenOrderRequest) (*OrderView, error) {
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		return nil, apperrors.NewInvalidInput("valid tableId is required")
	}
	userID, err := uuid.Parse(req.OpenedByUserID)
	if err != nil {
		return nil, apperrors.NewInvalidInput("valid openedByUserId is required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.NewInvalidInput("items required")
	}

	lines := make([]orderLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperrors.NewInvalidInput("invalid productId %q", item.ProductID)
		}
		if item.Quantity < 1 || item.Quantity > maxQuantity || item.Quantity != math.Trunc(item.Quantity) {
			return nil, apperrors.NewInvalidInput("quantity for product %s must be a whole number of at least 1", item.ProductID)
		}
		lines = append(lines, orderLine{productID: productID, quantity: int(item.Quantity)})
	}

	key := req.IdempotencyKey
	if key != "" && s.idempotency != nil {
		view, done, err := s.replay(ctx, key)
		if err != nil || done {
			return view, err
		}
	} else {
		key = ""
	}

	orderID, err := s.openWithRetry(ctx, tableID, userID, lines)
	if err != nil {
		if key != "" {
			s.releaseKey(ctx, key)
		}
		return nil, err
	}

	if key != "" {
		if err := s.idempotency.Complete(context.WithoutCancel(ctx), key, orderID.String()); err != nil {
			s.log.Warn("failed to complete idempotency key", zap.String("key", key), zap.Error(err))
		}
	}

	order, err := s.store.Orders().GetDetailed(ctx, orderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load order")
	}
	view := NewOrderView(order)

	s.afterChange(ctx, kitchen.EventOrderOpened, &view)
	return &view, nil
}

// replay claims key. done is true when the caller must return view and err
// as is instead of opening a new order.
func (s *orderService) replay(ctx context.Context, key string) (*OrderView, bool, error) {
	prior, reserved, err := s.idempotency.Reserve(ctx, key)
	if err != nil {
		return nil, true, apperrors.Wrap(err, "failed to reserve idempotency key")
	}
	if reserved {
		return nil, false, nil
	}
	if prior == "" {
		return nil, true, apperrors.NewConflict("a request with this idempotency key is already in progress")
	}

	id, err := uuid.Parse(prior)
	if err != nil {
		return nil, true, apperrors.Wrap(err, "corrupt idempotency record")
	}
	order, err := s.store.Orders().GetDetailed(ctx, id)
	if err != nil {
		return nil, true, apperrors.Wrap(err, "failed to load order")
	}
	view := NewOrderView(order)
	return &view, true, nil
}

func (s *orderService) releaseKey(ctx context.Context, key string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *orderService) openWithRetry(ctx context.Context, tableID, userID uuid.UUID, lines []orderLine) (uuid.UUID, error) {
	for attempt := 1; ; attempt++ {
		orderID, err := s.openOnce(ctx, tableID, userID, lines)
		if err == nil {
			return orderID, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return uuid.Nil, err
		}
		if attempt >= s.retries {
			s.log.Warn("order number retries exhausted", zap.Int("attempts", attempt))
			return uuid.Nil, apperrors.NewConflict("could not assign an order number, please retry")
		}
		s.log.Debug("order number taken, retrying", zap.Int("attempt", attempt))
	}
}

func (s *orderService) openOnce(ctx context.Context, tableID, userID uuid.UUID, lines []orderLine) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		table, err := tx.Tables().GetByIDForUpdate(ctx, tableID)
		if err != nil {
			return notFoundOr(err, "table not found", "failed to load table")
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return notFoundOr(err, "user not found", "failed to load user")
		}

		products, err := ResolvePrices(ctx, tx.Products(), distinctProducts(lines))
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderItem{
				ProductID: line.productID,
				Quantity:  line.quantity,
				UnitPrice: products[line.productID].Price,
				Status:    models.ItemPlaced,
			})
		}

		max, err := tx.Orders().MaxOrderNumber(ctx)
		if err != nil {
			return apperrors.Wrap(err, "failed to assign order number")
		}

		order := &models.Order{
			OrderNumber:    max + 1,
			TableID:        table.ID,
			OpenedByUserID: userID,
			Status:         models.OrderOpen,
			Total:          models.SumItems(items),
			CreatedAt:      s.now(),
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return err
			}
			return apperrors.Wrap(err, "failed to create order")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.OrderItems().CreateBatch(ctx, items); err != nil {
			return apperrors.Wrap(err, "failed to create order items")
		}

		if table.Status != models.TableActive {
			if err := tx.Tables().UpdateStatus(ctx, table.ID, models.TableActive); err != nil {
				return apperrors.Wrap(err, "failed to update table status")
			}
		}

		orderID = order.ID
		return nil
	})
	return orderID, err
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*OrderView, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.NewInvalidInput("invalid order status %q", status)
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperrors.NewInvalidInput("invalid order id")
	}

	changed := false
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "order not found", "failed to load order")
		}
		if order.Status == next {
			return nil
		}
		if s.guard != nil {
			if err := s.guard(order, next); err != nil {
				return err
			}
		}

		var closedAt *time.Time
		switch {
		case next.IsTerminal() && order.Status.IsTerminal() && order.ClosedAt != nil:
			closedAt = order.ClosedAt
		case next.IsTerminal():
			now := s.now()
			closedAt = &now
		}
		if err := tx.Orders().UpdateStatus(ctx, order.ID, next, closedAt); err != nil {
			return apperrors.Wrap(err, "failed to update order status")
		}
		if err := syncTableStatus(ctx, tx, order.TableID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.store.Orders().GetDetailed(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load order")
	}
	view := NewOrderView(order)
	if changed {
		s.afterChange(ctx, kitchen.EventOrderStatusChanged, &view)
	}
	return &view, nil
}

// syncTableStatus sets the table active iff it still has an open order.
// The table row is locked before counting so concurrent updates serialize.
func syncTableStatus(ctx context.Context, tx repository.Store, tableID uuid.UUID) error {
	table, err := tx.Tables().GetByIDForUpdate(ctx, tableID)
	if err != nil {
		return apperrors.Wrap(err, "failed to load table")
	}
	open, err := tx.Orders().CountOpenByTable(ctx, tableID)
	if err != nil {
		return apperrors.Wrap(err, "failed to count open orders")
	}

	want := models.TableAvailable
	if open > 0 {
		want = models.TableActive
	}
	if table.Status == want {
		return nil
	}
	if err := tx.Tables().UpdateStatus(ctx, tableID, want); err != nil {
		return apperrors.Wrap(err, "failed to update table status")
	}
	return nil
}

func (s *orderService) UpdateOrderItemStatus(ctx context.Context, itemID, status string) (*OrderItemView, error) {
	next, ok := models.ParseOrderItemStatus(status)
	if !ok {
		return nil, apperrors.NewInvalidInput("invalid order item status %q", status)
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, apperrors.NewInvalidInput("invalid order item id")
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		item, err := tx.OrderItems().GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "order item not found", "failed to load order item")
		}
		// Lock the parent so concurrent item updates recompute the total in turn.
		order, err := tx.Orders().GetByIDForUpdate(ctx, item.OrderID)
		if err != nil {
			return apperrors.Wrap(err, "failed to load order")
		}

		current := item.Status
		for _, it := range order.Items {
			if it.ID == id {
				current = it.Status
			}
		}
		if current == next {
			return nil
		}

		if err := tx.OrderItems().UpdateStatus(ctx, id, next); err != nil {
			return apperrors.Wrap(err, "failed to update order item status")
		}
		items, err := tx.OrderItems().GetByOrderID(ctx, order.ID)
		if err != nil {
			return apperrors.Wrap(err, "failed to load order items")
		}
		if err := tx.Orders().UpdateTotal(ctx, order.ID, models.SumItems(items)); err != nil {
			return apperrors.Wrap(err, "failed to update order total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item, err := s.store.OrderItems().GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load order item")
	}
	view := OrderItemView{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal(),
		Status:    item.Status,
	}
	if item.Product != nil {
		view.ProductName = item.Product.Name
	}
	return &view, nil
}

func (s *orderService) GetTableWithOrders(ctx context.Context, tableNumber int) (*TableDetails, error) {
	table, err := s.store.Tables().GetByNumber(ctx, tableNumber)
	if err != nil {
		return nil, notFoundOr(err, "table not found", "failed to load table")
	}
	orders, err := s.store.Orders().ListByTableDetailed(ctx, table.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load orders")
	}

	return &TableDetails{
		ID:        table.ID,
		Number:    table.Number,
		Status:    table.Status,
		CreatedAt: table.CreatedAt,
		Orders:    newOrderViews(orders),
	}, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]OrderView, error) {
	orders, err := s.store.Orders().ListDetailed(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list orders")
	}
	return newOrderViews(orders), nil
}

func (s *orderService) GetOpenOrderCount(ctx context.Context) (int64, error) {
	count, err := s.store.Orders().CountOpen(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count open orders")
	}
	return count, nil
}

// afterChange runs the post-commit side channels. Failures are logged only;
// the order change has already been committed.
func (s *orderService) afterChange(ctx context.Context, eventType string, view *OrderView) {
	ctx = context.WithoutCancel(ctx)

	count, err := s.store.Orders().CountOpen(ctx)
	if err != nil {
		s.log.Error("failed to count open orders for broadcast", zap.Error(err))
	} else {
		s.notifier.Broadcast(ctx, count)
	}

	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, kitchenEvent(eventType, view, s.now())); err != nil {
		s.log.Warn("failed to publish kitchen event",
			zap.String("type", eventType),
			zap.String("order_id", view.ID.String()),
			zap.Error(err))
	}
}

func kitchenEvent(eventType string, view *OrderView, at time.Time) kitchen.Event {
	event := kitchen.Event{
		Type:        eventType,
		OrderID:     view.ID.String(),
		OrderNumber: view.OrderNumber,
		TableNumber: view.TableNumber,
		Status:      string(view.OrderStatus),
		OccurredAt:  at.UTC(),
	}
	if eventType == kitchen.EventOrderOpened {
		for _, item := range view.Items {
			event.Items = append(event.Items, kitchen.Item{
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Status:      string(item.Status),
			})
		}
	}
	return event
}

func distinctProducts(lines []orderLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.productID]; ok {
			continue
		}
		seen[line.productID] = struct{}{}
		ids = append(ids, line.productID)
	}
	return ids
}

// notFoundOr maps repository.ErrNotFound to a NotFound error and anything
// else to an internal one.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("%s", notFound)
	}
	return apperrors.Wrap(err, internal)
}
