package debts

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a debt.
type Status string

const (
	// StatusPending marks a debt with an outstanding balance.
	StatusPending Status = "pending"
	// StatusPaid marks a fully settled debt.
	StatusPaid Status = "paid"
)

// Debt is a customer's credit purchase tracked until settled.
type Debt struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customer_id"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`

	Lines    []Line    `json:"lines,omitempty"`
	Payments []Payment `json:"payments,omitempty"`
}

// Line is a debt position priced at debt creation time. The captured
// unit price stays fixed even when the catalog price changes later.
type Line struct {
	ID          int64   `json:"id"`
	DebtID      int64   `json:"debt_id"`
	ProductID   *int64  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Subtotal is the line amount.
func (l Line) Subtotal() float64 { return l.UnitPrice * float64(l.Quantity) }

// Payment is a partial or full abono against a debt.
type Payment struct {
	ID     int64     `json:"id"`
	DebtID int64     `json:"debt_id"`
	Amount float64   `json:"amount"`
	Memo   *string   `json:"memo,omitempty"`
	PaidAt time.Time `json:"paid_at"`
}

// NewLine describes a position for debt creation.
type NewLine struct {
	ProductID *int64
	Quantity  int
	UnitPrice *float64
}

// settleEpsilon absorbs float drift when deciding a debt is fully paid.
const settleEpsilon = 0.001

var (
	// ErrNotFound indicates the debt does not exist.
	ErrNotFound = errors.New("debts: not found")
	// ErrInvalidAmount rejects zero or negative payment amounts.
	ErrInvalidAmount = errors.New("debts: payment amount must be positive")
	// ErrAlreadySettled rejects payments against a settled debt.
	ErrAlreadySettled = errors.New("debts: debt already settled")
	// ErrNoLines rejects creating a debt without positions.
	ErrNoLines = errors.New("debts: at least one line required")
)

// Total is the sum of all line subtotals.
func (d *Debt) Total() float64 {
	total := 0.0
	for _, l := range d.Lines {
		total += l.Subtotal()
	}
	return total
}

// Paid is the sum of all registered payments.
func (d *Debt) Paid() float64 {
	paid := 0.0
	for _, p := range d.Payments {
		paid += p.Amount
	}
	return paid
}

// Balance is the outstanding amount, never below zero.
func (d *Debt) Balance() float64 {
	balance := d.Total() - d.Paid()
	if balance < 0 {
		return 0
	}
	return balance
}

// Settled reports whether the outstanding balance is effectively zero.
func (d *Debt) Settled() bool {
	balance := d.Total() - d.Paid()
	if balance < 0 {
		balance = -balance
	}
	return balance <= settleEpsilon
}
