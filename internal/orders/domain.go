package orders

import (
	"errors"
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusPending marks a freshly placed order.
	StatusPending Status = "pending"
	// StatusProcessing marks an order being prepared.
	StatusProcessing Status = "processing"
	// StatusCompleted marks a delivered order. Completion opens a debt
	// for the captured total.
	StatusCompleted Status = "completed"
	// StatusCancelled marks an aborted order. Cancellation restores
	// stock and removes the order.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is a placed purchase with a contact snapshot taken at checkout.
// The snapshot stays fixed even when the customer record changes later.
type Order struct {
	ID                     int64     `json:"id"`
	DocNumber              string    `json:"doc_number"`
	CustomerID             int64     `json:"customer_id"`
	CustomerName           string    `json:"customer_name"`
	CustomerIdentification string    `json:"customer_identification"`
	CustomerPhone          *string   `json:"customer_phone,omitempty"`
	CustomerEmail          *string   `json:"customer_email,omitempty"`
	CustomerAddress        *string   `json:"customer_address,omitempty"`
	Notes                  *string   `json:"notes,omitempty"`
	Status                 Status    `json:"status"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	Lines []Line `json:"lines,omitempty"`
}

// Line is an order position priced at checkout. Custom lines start at
// price zero until an operator fixes one.
type Line struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	ProductID    *int64  `json:"product_id,omitempty"`
	ProductName  string  `json:"product_name"`
	IsCustom     bool    `json:"is_custom"`
	Measurements *string `json:"measurements,omitempty"`
	Colors       *string `json:"colors,omitempty"`
	Material     *string `json:"material,omitempty"`
	Spec         *string `json:"spec,omitempty"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}

// Subtotal is the line amount.
func (l Line) Subtotal() float64 { return l.UnitPrice * float64(l.Quantity) }

// Total is the sum of all line subtotals.
func (o *Order) Total() float64 {
	total := 0.0
	for _, l := range o.Lines {
		total += l.Subtotal()
	}
	return total
}

// CheckoutForm carries the buyer's contact details.
type CheckoutForm struct {
	Identification string `validate:"required,max=20"`
	Name           string `validate:"required,max=120"`
	Address        string `validate:"omitempty,max=250"`
	Phone          string `validate:"omitempty,max=30"`
	Email          string `validate:"omitempty,email"`
	Notes          string `validate:"omitempty,max=500"`
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status *Status
}

// ListItem is an order summary row.
type ListItem struct {
	ID           int64     `json:"id"`
	DocNumber    string    `json:"doc_number"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
	Total        float64   `json:"total"`
	Status       Status    `json:"status"`
}

var (
	// ErrNotFound indicates the order or line does not exist.
	ErrNotFound = errors.New("orders: not found")
	// ErrEmptyCart rejects checkout with no cart lines.
	ErrEmptyCart = errors.New("orders: cart is empty")
	// ErrInsufficientStock indicates a line exceeds available stock.
	ErrInsufficientStock = errors.New("orders: insufficient stock")
	// ErrInvalidStatus rejects an unknown status value.
	ErrInvalidStatus = errors.New("orders: invalid status")
	// ErrFinalStatus rejects changes to completed or cancelled orders.
	ErrFinalStatus = errors.New("orders: order already finalized")
	// ErrInvalidPrice rejects non-positive custom line prices.
	ErrInvalidPrice = errors.New("orders: price must be positive")
	// ErrInvalidQuantity rejects non-positive line quantities.
	ErrInvalidQuantity = errors.New("orders: quantity must be positive")
)

// UnpricedCustomLinesError reports custom lines still at price zero,
// which block order completion.
type UnpricedCustomLinesError struct {
	ProductNames []string
}

func (e *UnpricedCustomLinesError) Error() string {
	msg := "orders: custom lines need a price before completion:"
	for i, name := range e.ProductNames {
		if i > 0 {
			msg += ","
		}
		msg += " " + name
	}
	return msg
}
