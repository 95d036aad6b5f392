package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/domain"
	apperrors "github.com/faraganiev/testjowi/internal/errors"
)

// ItemSelection is one requested order line: a catalog product id and the
// desired quantity. Unknown or unavailable product ids are dropped, matching
// the order form which only ever offers available products.
type ItemSelection struct {
	ProductID int
	Quantity  int
	Notes     *string
}

type CreateOrderRequest struct {
	CustomerName string
	Contact      string
	Items        []ItemSelection
	ActorID      uint
}

type TxService interface {
	CreateOrder(ctx context.Context, order *domain.Order) (uint, error)
	ChangeStatus(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID uint) (*domain.Order, bool, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	List(ctx context.Context, status *domain.Status) ([]domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
}

type OrderItemRepository interface {
	FindByOrderID(ctx context.Context, orderID uint) ([]domain.OrderItem, error)
}

type Catalog interface {
	GetAvailableByIDs(ctx context.Context, ids []int) ([]domain.Product, error)
}

// Notifier is the change-notification channel. Broadcast is fire-and-forget:
// it carries no payload and its failures never reach the caller.
type Notifier interface {
	Broadcast(event string)
}

// EventOrderUpdate is the single event name observers subscribe to. It is a
// cache-invalidation signal; dashboards re-fetch on receipt.
const EventOrderUpdate = "order_update"

type OrdersUseCase struct {
	txService        TxService
	orderRepo        OrderRepository
	itemRepo         OrderItemRepository
	catalog          Catalog
	notifier         Notifier
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewOrdersUseCase(
	txService TxService,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	catalog Catalog,
	notifier Notifier,
	logger *zap.Logger,
	maxRetryAttempts int,
) *OrdersUseCase {
	return &OrdersUseCase{
		txService:        txService,
		orderRepo:        orderRepo,
		itemRepo:         itemRepo,
		catalog:          catalog,
		notifier:         notifier,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *OrdersUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	ids := make([]int, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := uc.catalog.GetAvailableByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	productsByID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	var selections []domain.Selection
	for _, item := range req.Items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			continue
		}
		selections = append(selections, domain.Selection{
			Product:  product,
			Quantity: item.Quantity,
			Notes:    item.Notes,
		})
	}

	order, err := domain.NewOrder(req.CustomerName, req.Contact, selections, req.ActorID)
	if err != nil {
		return nil, err
	}

	orderID, err := uc.txService.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.Uint("orderId", orderID),
		zap.Float64("total", order.Total),
		zap.Int("itemCount", len(order.Items)),
		zap.Uint("by", req.ActorID),
	)
	uc.notifier.Broadcast(EventOrderUpdate)

	return order, nil
}

// ListOrders returns orders newest first. An unrecognized filter value is
// ignored rather than rejected, and the unfiltered list is returned.
func (uc *OrdersUseCase) ListOrders(ctx context.Context, statusFilter string) ([]domain.Order, error) {
	var filter *domain.Status
	if status, ok := domain.ParseStatus(statusFilter); ok {
		filter = &status
	}
	return uc.orderRepo.List(ctx, filter)
}

func (uc *OrdersUseCase) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := uc.itemRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ChangeStatus validates the raw status against the enumeration before
// touching the lifecycle engine, retries transient deadlocks, writes the
// audit log line and notifies observers after the commit.
func (uc *OrdersUseCase) ChangeStatus(ctx context.Context, orderID uint, rawStatus string, actorID uint) (*domain.Order, error) {
	target, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewInvalidStatusError(rawStatus)
	}

	old, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := uc.changeStatusWithRetry(ctx, orderID, target)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("status_change",
		zap.Uint("orderId", orderID),
		zap.String("from", old.Status.String()),
		zap.String("to", order.Status.String()),
		zap.Uint("by", actorID),
	)
	uc.notifier.Broadcast(EventOrderUpdate)

	return order, nil
}

// CancelOrder runs the cancel shortcut. A terminal order is reported back
// with cancelled=false so the boundary can show a notice instead of an
// error page.
func (uc *OrdersUseCase) CancelOrder(ctx context.Context, orderID uint, actorID uint) (*domain.Order, bool, error) {
	old, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	order, cancelled, err := uc.txService.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	if cancelled {
		uc.logger.Info("status_change",
			zap.Uint("orderId", orderID),
			zap.String("from", old.Status.String()),
			zap.String("to", domain.StatusCanceled.String()),
			zap.Uint("by", actorID),
		)
		uc.notifier.Broadcast(EventOrderUpdate)
	}

	return order, cancelled, nil
}

func (uc *OrdersUseCase) Stats(ctx context.Context) (map[domain.Status]int, error) {
	return uc.orderRepo.CountByStatus(ctx)
}

func (uc *OrdersUseCase) changeStatusWithRetry(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
	maxAttempts := uc.maxRetryAttempts
	// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms).
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		order, err := uc.txService.ChangeStatus(ctx, orderID, target)
		if err == nil {
			return order, nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				// Jitter: ±20% of the backoff base.
				base := backoffs[(attempt-1)%len(backoffs)]
				jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
				time.Sleep(jitter)
				uc.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", maxAttempts),
					zap.Uint("orderId", orderID),
				)
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
