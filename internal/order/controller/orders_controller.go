package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/auth"
	"github.com/faraganiev/testjowi/internal/domain"
	apperrors "github.com/faraganiev/testjowi/internal/errors"
	"github.com/faraganiev/testjowi/internal/order/usecase"
)

type OrdersUseCase interface {
	CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, statusFilter string) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*domain.Order, error)
	ChangeStatus(ctx context.Context, orderID uint, rawStatus string, actorID uint) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID uint, actorID uint) (*domain.Order, bool, error)
	Stats(ctx context.Context) (map[domain.Status]int, error)
}

type OrdersController struct {
	useCase OrdersUseCase
	logger  *zap.Logger
}

func NewOrdersController(useCase OrdersUseCase, logger *zap.Logger) *OrdersController {
	return &OrdersController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrdersController) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := c.useCase.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		c.handleError(w, uuid.New().String(), err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toOrderDTO(order, false))
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"orders": dtos})
}

func (c *OrdersController) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actorID, ok := auth.ActorID(r.Context())
	if !ok {
		c.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "UNAUTHORIZED"})
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	items := make([]usecase.ItemSelection, len(req.Items))
	for i, item := range req.Items {
		items[i] = usecase.ItemSelection{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
		}
	}

	order, err := c.useCase.CreateOrder(r.Context(), usecase.CreateOrderRequest{
		CustomerName: req.Name,
		Contact:      req.Contact,
		Items:        items,
		ActorID:      actorID,
	})
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"order": toOrderDTO(*order, true),
		// The print queue is a demo stub; the notice mirrors the UI copy.
		"notice": fmt.Sprintf("Заказ №%d отправлен на печать (демо).", order.ID),
	})
}

func (c *OrdersController) HandleGet(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	orderID, err := c.orderIDParam(r)
	if err != nil {
		c.writeValidationError(w, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), orderID)
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"order": toOrderDTO(*order, true)})
}

func (c *OrdersController) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actorID, ok := auth.ActorID(r.Context())
	if !ok {
		c.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "UNAUTHORIZED"})
		return
	}

	orderID, err := c.orderIDParam(r)
	if err != nil {
		c.writeValidationError(w, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.ChangeStatus(r.Context(), orderID, req.Status, actorID)
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"order": toOrderDTO(*order, true)})
}

func (c *OrdersController) HandleCancel(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	actorID, ok := auth.ActorID(r.Context())
	if !ok {
		c.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "UNAUTHORIZED"})
		return
	}

	orderID, err := c.orderIDParam(r)
	if err != nil {
		c.writeValidationError(w, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return
	}

	order, cancelled, err := c.useCase.CancelOrder(r.Context(), orderID, actorID)
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	resp := CancelOrderResponse{
		Order:     toOrderDTO(*order, true),
		Cancelled: cancelled,
	}
	if !cancelled {
		resp.Notice = "Этот заказ уже нельзя отменить."
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrdersController) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := c.useCase.Stats(r.Context())
	if err != nil {
		c.handleError(w, uuid.New().String(), err)
		return
	}

	resp := StatsResponse{
		Counts:   make(map[string]int, len(counts)),
		Statuses: make([]string, 0, len(domain.AllStatuses())),
	}
	for status, count := range counts {
		resp.Counts[status.String()] = count
	}
	// The full enumeration rides along so the dashboard can zero-fill.
	for _, status := range domain.AllStatuses() {
		resp.Statuses = append(resp.Statuses, status.String())
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrdersController) orderIDParam(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "orderID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid order id %q", raw)
	}
	return uint(id), nil
}

func (c *OrdersController) handleError(w http.ResponseWriter, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if ise, ok := apperrors.IsInvalidStatusError(err); ok {
		c.writeError(w, traceID, http.StatusBadRequest, "INVALID_STATUS", ise.Error())
		return
	}

	if ite, ok := apperrors.IsInvalidTransitionError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "INVALID_TRANSITION",
			fmt.Sprintf("Переход %s → %s не разрешён.", ite.From, ite.To))
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", nfe.Message)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", "the order is being modified concurrently, retry")
		return
	}

	c.logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrdersController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrdersController) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
		"traceId": traceID,
	})
}

func (c *OrdersController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
