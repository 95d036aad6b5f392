package domain

import (
	"strings"
	"time"

	apperrors "github.com/faraganiev/testjowi/internal/errors"
)

const maxItemQuantity = 999

type Order struct {
	ID           uint
	CustomerName string
	Contact      string
	Status       Status
	Total        float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    uint
	Items        []OrderItem
}

type OrderItem struct {
	ID          uint
	OrderID     uint
	ProductName string
	Quantity    int
	Price       float64
	Notes       *string
}

// Selection is one line of a new order request: a catalog product, a desired
// quantity and an optional free-text note.
type Selection struct {
	Product  Product
	Quantity int
	Notes    *string
}

// NewOrder builds an order aggregate from catalog selections. Product name
// and price are snapshotted into the items so later catalog edits do not
// retroactively change existing orders. Zero and negative quantities are
// dropped, quantities above 999 are clamped.
func NewOrder(customerName, contact string, selections []Selection, createdBy uint) (*Order, error) {
	customerName = strings.TrimSpace(customerName)
	contact = strings.TrimSpace(contact)

	var details []apperrors.ValidationDetail
	if customerName == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "customer name is required",
		})
	}
	if contact == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "contact",
			Message: "contact is required",
		})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("name and contact are required", details...)
	}

	order := &Order{
		CustomerName: customerName,
		Contact:      contact,
		Status:       StatusNew,
		CreatedBy:    createdBy,
	}

	for _, sel := range selections {
		qty := sel.Quantity
		if qty <= 0 {
			continue
		}
		if qty > maxItemQuantity {
			qty = maxItemQuantity
		}
		order.Items = append(order.Items, OrderItem{
			ProductName: sel.Product.Name,
			Quantity:    qty,
			Price:       sel.Product.Price,
			Notes:       sel.Notes,
		})
		order.Total += sel.Product.Price * float64(qty)
	}

	if len(order.Items) == 0 {
		return nil, apperrors.NewValidationError("select at least one product", apperrors.ValidationDetail{
			Field:   "items",
			Message: "at least one positive quantity is required",
		})
	}

	return order, nil
}

// Transition is the only sanctioned way to change an order's status.
func (o *Order) Transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return apperrors.NewInvalidTransitionError(o.Status.String(), target.String())
	}
	o.Status = target
	return nil
}

// Cancel moves the order to canceled unless it is already terminal. The
// return value reports whether anything changed; a terminal order is not an
// error, just not cancellable.
func (o *Order) Cancel() bool {
	if o.Status.Terminal() {
		return false
	}
	o.Status = StatusCanceled
	return true
}
