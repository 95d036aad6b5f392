package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/domain"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.Status) error
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
}

// OrderService owns the transactional paths of the order lifecycle. Every
// mutation runs in a single transaction with a bounded timeout, and status
// changes re-validate against the row read under FOR UPDATE, so two racing
// transitions can never both commit off the same stale status.
type OrderService struct {
	db        TransactionManager
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewOrderService(
	db TransactionManager,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// CreateOrder persists the order and all of its items atomically and returns
// the new order id. Either everything is stored or nothing is.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (uint, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback()

	orderID, err := s.orderRepo.Insert(txCtx, tx, *order)
	if err != nil {
		return 0, err
	}

	for i := range order.Items {
		order.Items[i].OrderID = orderID
		itemID, err := s.itemRepo.Insert(txCtx, tx, order.Items[i])
		if err != nil {
			return 0, err
		}
		order.Items[i].ID = itemID
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit order creation", zap.Error(err))
		return 0, err
	}

	order.ID = orderID
	return orderID, nil
}

// ChangeStatus applies a lifecycle transition. The current status is re-read
// under a row lock inside the transaction and the transition table consulted
// against that fresh value; the loser of a concurrent race therefore sees an
// InvalidTransitionError instead of silently overwriting the winner.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Transition(target); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(txCtx, tx, orderID, order.Status); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit status change", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, err
	}

	return order, nil
}

// CancelOrder moves the order to canceled under the same row lock. When the
// order is already terminal nothing is written and the second return value
// is false.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (*domain.Order, bool, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, false, err
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, orderID)
	if err != nil {
		return nil, false, err
	}

	if !order.Cancel() {
		return order, false, nil
	}

	if err := s.orderRepo.UpdateStatus(txCtx, tx, orderID, order.Status); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit cancellation", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, false, err
	}

	return order, true, nil
}
