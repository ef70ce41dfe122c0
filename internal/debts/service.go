package debts

import (
	"context"
	"log/slog"
	"time"

	"github.com/abasto/abasto/internal/shared"
)

// Service implements the debt ledger rules.
type Service struct {
	repo        Repository
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// NewService builds a debt service. The idempotency store may be nil,
// in which case Idempotency-Key headers are not honoured.
func NewService(repo Repository, idempotency *shared.IdempotencyStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, idempotency: idempotency, logger: logger}
}

// Create opens a pending debt for a customer. Referenced products are
// priced at the current catalog price and their stock is decremented.
func (s *Service) Create(ctx context.Context, customerID int64, lines []NewLine) (*Debt, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for i := range lines {
		if lines[i].Quantity < 1 {
			lines[i].Quantity = 1
		}
	}
	d, err := s.repo.Create(ctx, customerID, lines, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("debt created", "debt_id", d.ID, "customer_id", customerID, "total", d.Total())
	return d, nil
}

// CreateFromCapturedLines opens a pending debt from lines whose prices
// were already fixed, for example order lines at completion time. Stock
// is not touched because the order flow already adjusted it.
func (s *Service) CreateFromCapturedLines(ctx context.Context, customerID int64, lines []NewLine) (*Debt, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	d, err := s.repo.Create(ctx, customerID, lines, false)
	if err != nil {
		return nil, err
	}
	s.logger.Info("debt created from order", "debt_id", d.ID, "customer_id", customerID, "total", d.Total())
	return d, nil
}

// Get fetches a debt with its lines and payments.
func (s *Service) Get(ctx context.Context, id int64) (*Debt, error) {
	return s.repo.Get(ctx, id)
}

// List returns debt summaries joined with customer names.
func (s *Service) List(ctx context.Context, f ListFilters) ([]ListItem, error) {
	return s.repo.List(ctx, f)
}

// RegisterPayment records an abono. Amounts above the outstanding
// balance are clamped to it; the debt settles once the balance reaches
// zero. An optional idempotency key makes retries safe.
func (s *Service) RegisterPayment(ctx context.Context, debtID int64, amount float64, memo *string, idempotencyKey string) (*Debt, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "debts"); err != nil {
			return nil, err
		}
	}
	d, err := s.repo.AddPayment(ctx, debtID, func(d *Debt) (Payment, bool, error) {
		if d.Settled() {
			return Payment{}, false, ErrAlreadySettled
		}
		applied := amount
		if balance := d.Balance(); applied > balance {
			applied = balance
		}
		remaining := d.Total() - d.Paid() - applied
		if remaining < 0 {
			remaining = -remaining
		}
		return Payment{Amount: applied, Memo: memo, PaidAt: time.Now()}, remaining <= settleEpsilon, nil
	})
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, idempotencyKey, "debts")
		}
		return nil, err
	}
	s.logger.Info("payment registered", "debt_id", debtID, "amount", amount, "status", d.Status)
	return d, nil
}

// MarkPaid settles a debt without registering a payment.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	now := time.Now()
	return s.repo.UpdateStatus(ctx, id, StatusPaid, &now)
}

// Delete removes a debt with its lines and payments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
