package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/domain"
	apperrors "github.com/faraganiev/testjowi/internal/errors"
)

// Mock implementations

type mockTxService struct {
	CreateOrderFunc  func(ctx context.Context, order *domain.Order) (uint, error)
	ChangeStatusFunc func(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error)
	CancelOrderFunc  func(ctx context.Context, orderID uint) (*domain.Order, bool, error)
}

func (m *mockTxService) CreateOrder(ctx context.Context, order *domain.Order) (uint, error) {
	return m.CreateOrderFunc(ctx, order)
}

func (m *mockTxService) ChangeStatus(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
	return m.ChangeStatusFunc(ctx, orderID, target)
}

func (m *mockTxService) CancelOrder(ctx context.Context, orderID uint) (*domain.Order, bool, error) {
	return m.CancelOrderFunc(ctx, orderID)
}

type mockOrderRepository struct {
	FindByIDFunc      func(ctx context.Context, id uint) (*domain.Order, error)
	ListFunc          func(ctx context.Context, status *domain.Status) ([]domain.Order, error)
	CountByStatusFunc func(ctx context.Context) (map[domain.Status]int, error)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) List(ctx context.Context, status *domain.Status) ([]domain.Order, error) {
	return m.ListFunc(ctx, status)
}

func (m *mockOrderRepository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	return m.CountByStatusFunc(ctx)
}

type mockItemRepository struct {
	FindByOrderIDFunc func(ctx context.Context, orderID uint) ([]domain.OrderItem, error)
}

func (m *mockItemRepository) FindByOrderID(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	return m.FindByOrderIDFunc(ctx, orderID)
}

type mockCatalog struct {
	GetAvailableByIDsFunc func(ctx context.Context, ids []int) ([]domain.Product, error)
}

func (m *mockCatalog) GetAvailableByIDs(ctx context.Context, ids []int) ([]domain.Product, error) {
	return m.GetAvailableByIDsFunc(ctx, ids)
}

type mockNotifier struct {
	mu     sync.Mutex
	events []string
}

func (m *mockNotifier) Broadcast(event string) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
}

func (m *mockNotifier) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	copy(out, m.events)
	return out
}

func newTestUseCase(
	txService *mockTxService,
	orderRepo *mockOrderRepository,
	itemRepo *mockItemRepository,
	catalog *mockCatalog,
	notifier *mockNotifier,
) *OrdersUseCase {
	return NewOrdersUseCase(txService, orderRepo, itemRepo, catalog, notifier, zap.NewNop(), 3)
}

func deadlockErr() error {
	return &mysql.MySQLError{Number: 1213}
}

// Tests

func TestCreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}

	catalog := &mockCatalog{
		GetAvailableByIDsFunc: func(ctx context.Context, ids []int) ([]domain.Product, error) {
			return []domain.Product{
				{ID: 1, Name: "Пицца Маргарита", Price: 55000, IsAvailable: true},
				{ID: 4, Name: "Кола 0.5", Price: 11000, IsAvailable: true},
			}, nil
		},
	}
	txService := &mockTxService{
		CreateOrderFunc: func(ctx context.Context, order *domain.Order) (uint, error) {
			order.ID = 42
			return 42, nil
		},
	}

	uc := newTestUseCase(txService, &mockOrderRepository{}, &mockItemRepository{}, catalog, notifier)

	order, err := uc.CreateOrder(ctx, CreateOrderRequest{
		CustomerName: "Иван",
		Contact:      "+999",
		Items: []ItemSelection{
			{ProductID: 1, Quantity: 2},
			{ProductID: 4, Quantity: 1},
		},
		ActorID: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, uint(42), order.ID)
	assert.Equal(t, domain.StatusNew, order.Status)
	assert.Equal(t, 121000.0, order.Total)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, []string{EventOrderUpdate}, notifier.Events())
}

func TestCreateOrder_UnknownProductsDropped(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}

	catalog := &mockCatalog{
		GetAvailableByIDsFunc: func(ctx context.Context, ids []int) ([]domain.Product, error) {
			return []domain.Product{{ID: 1, Name: "Пицца Маргарита", Price: 55000}}, nil
		},
	}
	txService := &mockTxService{
		CreateOrderFunc: func(ctx context.Context, order *domain.Order) (uint, error) {
			return 1, nil
		},
	}

	uc := newTestUseCase(txService, &mockOrderRepository{}, &mockItemRepository{}, catalog, notifier)

	order, err := uc.CreateOrder(ctx, CreateOrderRequest{
		CustomerName: "Иван",
		Contact:      "+999",
		Items: []ItemSelection{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 5},
		},
		ActorID: 1,
	})

	require.NoError(t, err)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 55000.0, order.Total)
}

func TestCreateOrder_ValidationError_NoPersistNoBroadcast(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}
	created := false

	catalog := &mockCatalog{
		GetAvailableByIDsFunc: func(ctx context.Context, ids []int) ([]domain.Product, error) {
			return []domain.Product{{ID: 1, Name: "Пицца Маргарита", Price: 55000}}, nil
		},
	}
	txService := &mockTxService{
		CreateOrderFunc: func(ctx context.Context, order *domain.Order) (uint, error) {
			created = true
			return 1, nil
		},
	}

	uc := newTestUseCase(txService, &mockOrderRepository{}, &mockItemRepository{}, catalog, notifier)

	_, err := uc.CreateOrder(ctx, CreateOrderRequest{
		CustomerName: "",
		Contact:      "+999",
		Items:        []ItemSelection{{ProductID: 1, Quantity: 1}},
		ActorID:      1,
	})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	// Empty selection after dropping zero quantities.
	_, err = uc.CreateOrder(ctx, CreateOrderRequest{
		CustomerName: "Иван",
		Contact:      "+999",
		Items:        []ItemSelection{{ProductID: 1, Quantity: 0}},
		ActorID:      1,
	})
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)

	assert.False(t, created, "nothing may be persisted on validation failure")
	assert.Empty(t, notifier.Events())
}

func TestChangeStatus_UnknownStatusRejectedBeforeEngine(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}
	engineConsulted := false

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusNew}, nil
		},
	}
	txService := &mockTxService{
		ChangeStatusFunc: func(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
			engineConsulted = true
			return nil, nil
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	_, err := uc.ChangeStatus(ctx, 1, "shipped", 7)

	ise, ok := apperrors.IsInvalidStatusError(err)
	require.True(t, ok)
	assert.Equal(t, "shipped", ise.Status)
	assert.False(t, engineConsulted)
	assert.Empty(t, notifier.Events())
}

func TestChangeStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return nil, apperrors.NewNotFoundError("order not found")
		},
	}

	uc := newTestUseCase(&mockTxService{}, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	_, err := uc.ChangeStatus(ctx, 9999, "confirmed", 7)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Empty(t, notifier.Events())
}

func TestChangeStatus_SuccessBroadcasts(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusNew}, nil
		},
	}
	txService := &mockTxService{
		ChangeStatusFunc: func(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
			return &domain.Order{ID: orderID, Status: target}, nil
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	order, err := uc.ChangeStatus(ctx, 1, "confirmed", 7)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
	assert.Equal(t, []string{EventOrderUpdate}, notifier.Events())
}

func TestChangeStatus_InvalidTransitionNotRetried(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}
	attempts := 0

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusNew}, nil
		},
	}
	txService := &mockTxService{
		ChangeStatusFunc: func(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
			attempts++
			return nil, apperrors.NewInvalidTransitionError("new", "ready")
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	_, err := uc.ChangeStatus(ctx, 1, "ready", 7)

	_, ok := apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, notifier.Events())
}

func TestChangeStatus_DeadlockRetriedThenSucceeds(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}
	attempts := 0

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusNew}, nil
		},
	}
	txService := &mockTxService{
		ChangeStatusFunc: func(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
			attempts++
			if attempts < 3 {
				return nil, deadlockErr()
			}
			return &domain.Order{ID: orderID, Status: target}, nil
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	order, err := uc.ChangeStatus(ctx, 1, "confirmed", 7)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
	assert.Equal(t, []string{EventOrderUpdate}, notifier.Events())
}

func TestChangeStatus_DeadlockRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}
	attempts := 0

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusNew}, nil
		},
	}
	txService := &mockTxService{
		ChangeStatusFunc: func(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
			attempts++
			return nil, deadlockErr()
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	_, err := uc.ChangeStatus(ctx, 1, "confirmed", 7)

	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, attempts)
	assert.Empty(t, notifier.Events())
}

func TestCancelOrder_Cancellable(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusPreparing}, nil
		},
	}
	txService := &mockTxService{
		CancelOrderFunc: func(ctx context.Context, orderID uint) (*domain.Order, bool, error) {
			return &domain.Order{ID: orderID, Status: domain.StatusCanceled}, true, nil
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	order, cancelled, err := uc.CancelOrder(ctx, 1, 7)

	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, domain.StatusCanceled, order.Status)
	assert.Equal(t, []string{EventOrderUpdate}, notifier.Events())
}

func TestCancelOrder_NotCancellable(t *testing.T) {
	ctx := context.Background()
	notifier := &mockNotifier{}

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusCompleted}, nil
		},
	}
	txService := &mockTxService{
		CancelOrderFunc: func(ctx context.Context, orderID uint) (*domain.Order, bool, error) {
			return &domain.Order{ID: orderID, Status: domain.StatusCompleted}, false, nil
		},
	}

	uc := newTestUseCase(txService, orderRepo, &mockItemRepository{}, &mockCatalog{}, notifier)

	order, cancelled, err := uc.CancelOrder(ctx, 1, 7)

	require.NoError(t, err)
	assert.False(t, cancelled, "terminal orders are not cancellable")
	assert.Equal(t, domain.StatusCompleted, order.Status)
	assert.Empty(t, notifier.Events(), "no broadcast when nothing changed")
}

func TestListOrders_UnrecognizedFilterIgnored(t *testing.T) {
	ctx := context.Background()

	var gotFilter *domain.Status
	orderRepo := &mockOrderRepository{
		ListFunc: func(ctx context.Context, status *domain.Status) ([]domain.Order, error) {
			gotFilter = status
			return []domain.Order{{ID: 2}, {ID: 1}}, nil
		},
	}

	uc := newTestUseCase(&mockTxService{}, orderRepo, &mockItemRepository{}, &mockCatalog{}, &mockNotifier{})

	orders, err := uc.ListOrders(ctx, "shipped")

	require.NoError(t, err)
	assert.Nil(t, gotFilter, "unknown filter must be ignored")
	assert.Len(t, orders, 2)
}

func TestListOrders_RecognizedFilterApplied(t *testing.T) {
	ctx := context.Background()

	var gotFilter *domain.Status
	orderRepo := &mockOrderRepository{
		ListFunc: func(ctx context.Context, status *domain.Status) ([]domain.Order, error) {
			gotFilter = status
			return nil, nil
		},
	}

	uc := newTestUseCase(&mockTxService{}, orderRepo, &mockItemRepository{}, &mockCatalog{}, &mockNotifier{})

	_, err := uc.ListOrders(ctx, "preparing")

	require.NoError(t, err)
	require.NotNil(t, gotFilter)
	assert.Equal(t, domain.StatusPreparing, *gotFilter)
}

func TestGetOrder_LoadsItems(t *testing.T) {
	ctx := context.Background()

	orderRepo := &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id uint) (*domain.Order, error) {
			return &domain.Order{ID: id, Status: domain.StatusNew}, nil
		},
	}
	itemRepo := &mockItemRepository{
		FindByOrderIDFunc: func(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
			return []domain.OrderItem{{ID: 1, OrderID: orderID, ProductName: "Кола 0.5", Quantity: 1, Price: 11000}}, nil
		},
	}

	uc := newTestUseCase(&mockTxService{}, orderRepo, itemRepo, &mockCatalog{}, &mockNotifier{})

	order, err := uc.GetOrder(ctx, 5)

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Кола 0.5", order.Items[0].ProductName)
}

func TestStats_PassesThroughOmitEmpty(t *testing.T) {
	ctx := context.Background()

	orderRepo := &mockOrderRepository{
		CountByStatusFunc: func(ctx context.Context) (map[domain.Status]int, error) {
			return map[domain.Status]int{
				domain.StatusNew:       2,
				domain.StatusConfirmed: 1,
			}, nil
		},
	}

	uc := newTestUseCase(&mockTxService{}, orderRepo, &mockItemRepository{}, &mockCatalog{}, &mockNotifier{})

	counts, err := uc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.StatusNew])
	assert.Equal(t, 1, counts[domain.StatusConfirmed])
	_, present := counts[domain.StatusReady]
	assert.False(t, present, "zero-count statuses are omitted")
}
