package controller

import (
	"time"

	"github.com/faraganiev/testjowi/internal/domain"
)

type CreateOrderRequest struct {
	Name    string            `json:"name"`
	Contact string            `json:"contact"`
	Items   []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes,omitempty"`
}

type OrderItemDTO struct {
	ID          uint    `json:"id"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Notes       *string `json:"notes,omitempty"`
}

type OrderDTO struct {
	ID           uint           `json:"id"`
	CustomerName string         `json:"customerName"`
	Contact      string         `json:"contact"`
	Status       string         `json:"status"`
	Total        float64        `json:"total"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	CreatedBy    uint           `json:"createdBy"`
	Transitions  []string       `json:"transitions,omitempty"`
	Items        []OrderItemDTO `json:"items,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type CancelOrderResponse struct {
	Order     OrderDTO `json:"order"`
	Cancelled bool     `json:"cancelled"`
	Notice    string   `json:"notice,omitempty"`
}

type StatsResponse struct {
	Counts   map[string]int `json:"counts"`
	Statuses []string       `json:"statuses"`
}

func toOrderDTO(order domain.Order, withDetail bool) OrderDTO {
	dto := OrderDTO{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Contact:      order.Contact,
		Status:       order.Status.String(),
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		CreatedBy:    order.CreatedBy,
	}

	if withDetail {
		for _, next := range order.Status.NextStatuses() {
			dto.Transitions = append(dto.Transitions, next.String())
		}
		for _, item := range order.Items {
			dto.Items = append(dto.Items, OrderItemDTO{
				ID:          item.ID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Price:       item.Price,
				Notes:       item.Notes,
			})
		}
	}

	return dto
}
