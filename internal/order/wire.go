package order

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/config"
	"github.com/faraganiev/testjowi/internal/order/controller"
	"github.com/faraganiev/testjowi/internal/order/repository"
	"github.com/faraganiev/testjowi/internal/order/service"
	"github.com/faraganiev/testjowi/internal/order/usecase"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	catalog usecase.Catalog,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *controller.OrdersController {
	orderRepo := repository.NewMySQLOrderRepository(db)
	itemRepo := repository.NewMySQLOrderItemRepository(db)

	orderSvc := service.NewOrderService(
		db,
		orderRepo,
		itemRepo,
		logger,
		cfg.Order.TxTimeout,
	)

	uc := usecase.NewOrdersUseCase(
		orderSvc,
		orderRepo,
		itemRepo,
		catalog,
		notifier,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return controller.NewOrdersController(uc, logger)
}
