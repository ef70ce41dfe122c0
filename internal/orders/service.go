package orders

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/abasto/abasto/internal/cart"
	"github.com/abasto/abasto/internal/customers"
	"github.com/abasto/abasto/internal/debts"
	"github.com/abasto/abasto/internal/shared"
)

// CartReader exposes the cart operations checkout needs.
type CartReader interface {
	Items(ctx context.Context, sess *shared.Session) ([]cart.ViewItem, float64, error)
	Clear(sess *shared.Session)
}

// CustomerResolver finds or creates the buying customer.
type CustomerResolver interface {
	FindOrCreate(ctx context.Context, req customers.UpsertRequest) (*customers.Customer, error)
}

// DebtOpener opens the pending debt an order completion materializes.
type DebtOpener interface {
	CreateFromCapturedLines(ctx context.Context, customerID int64, lines []debts.NewLine) (*debts.Debt, error)
}

// Service implements order placement and lifecycle rules.
type Service struct {
	repo        Repository
	carts       CartReader
	customers   CustomerResolver
	debts       DebtOpener
	idempotency *shared.IdempotencyStore
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewService builds an order service.
func NewService(repo Repository, carts CartReader, resolver CustomerResolver, opener DebtOpener, idempotency *shared.IdempotencyStore, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		carts:       carts,
		customers:   resolver,
		debts:       opener,
		idempotency: idempotency,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Checkout turns the session cart into a pending order. The customer is
// resolved by identification, contact details are snapshotted onto the
// order, stock is decremented for stock-backed lines and the cart is
// cleared. An optional idempotency key makes retries safe.
func (s *Service) Checkout(ctx context.Context, sess *shared.Session, form CheckoutForm, idempotencyKey string) (*Order, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, err
	}
	items, _, err := s.carts.Items(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "orders"); err != nil {
			return nil, err
		}
	}

	order, err := s.placeOrder(ctx, items, form)
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, idempotencyKey, "orders")
		}
		return nil, err
	}
	s.carts.Clear(sess)
	s.logger.Info("order placed", "order_id", order.ID, "doc_number", order.DocNumber, "total", order.Total())
	return order, nil
}

func (s *Service) placeOrder(ctx context.Context, items []cart.ViewItem, form CheckoutForm) (*Order, error) {
	customer, err := s.customers.FindOrCreate(ctx, customers.UpsertRequest{
		Name:           strings.TrimSpace(form.Name),
		Identification: optional(form.Identification),
		Phone:          optional(form.Phone),
		Email:          optional(form.Email),
		Address:        optional(form.Address),
	})
	if err != nil {
		return nil, err
	}

	order := &Order{
		DocNumber:              newDocNumber(),
		CustomerID:             customer.ID,
		CustomerName:           strings.TrimSpace(form.Name),
		CustomerIdentification: strings.ToUpper(strings.TrimSpace(form.Identification)),
		CustomerPhone:          optional(form.Phone),
		CustomerEmail:          optional(form.Email),
		CustomerAddress:        optional(form.Address),
		Notes:                  optional(form.Notes),
		Status:                 StatusPending,
	}
	for _, item := range items {
		productID := item.ProductID
		line := Line{
			ProductID:   &productID,
			ProductName: item.Name,
			IsCustom:    item.IsCustom,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		}
		if item.Custom != nil {
			line.Measurements = optional(item.Custom.Measurements)
			line.Colors = optional(item.Custom.Colors)
			line.Material = optional(item.Custom.Material)
			line.Spec = optional(item.Custom.Spec)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get fetches an order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns order summaries.
func (s *Service) List(ctx context.Context, f ListFilters) ([]ListItem, error) {
	return s.repo.List(ctx, f)
}

// ChangeStatus moves an order through its lifecycle. Completion requires
// every custom line to carry a price and opens a pending debt for the
// captured totals. Cancellation restores stock and removes the order.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == StatusCompleted || order.Status == StatusCancelled {
		return ErrFinalStatus
	}
	switch status {
	case StatusCompleted:
		return s.complete(ctx, order)
	case StatusCancelled:
		if err := s.repo.CancelAndDelete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("order cancelled", "order_id", id, "doc_number", order.DocNumber)
		return nil
	default:
		return s.repo.UpdateStatus(ctx, id, status)
	}
}

func (s *Service) complete(ctx context.Context, order *Order) error {
	var unpriced []string
	for _, line := range order.Lines {
		if line.IsCustom && line.UnitPrice <= 0 {
			unpriced = append(unpriced, line.ProductName)
		}
	}
	if len(unpriced) > 0 {
		return &UnpricedCustomLinesError{ProductNames: unpriced}
	}

	debtLines := make([]debts.NewLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		price := line.UnitPrice
		debtLines = append(debtLines, debts.NewLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: &price,
		})
	}
	debt, err := s.debts.CreateFromCapturedLines(ctx, order.CustomerID, debtLines)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, StatusCompleted); err != nil {
		return err
	}
	s.logger.Info("order completed", "order_id", order.ID, "debt_id", debt.ID, "total", order.Total())
	return nil
}

// SetLinePrice fixes the price of a custom line before completion.
func (s *Service) SetLinePrice(ctx context.Context, orderID, lineID int64, price float64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == StatusCompleted || order.Status == StatusCancelled {
		return ErrFinalStatus
	}
	return s.repo.SetLinePrice(ctx, orderID, lineID, price)
}

// UpdateLineQuantity changes a line quantity on an open order, moving
// stock by the difference for stock-backed lines.
func (s *Service) UpdateLineQuantity(ctx context.Context, orderID, lineID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == StatusCompleted || order.Status == StatusCancelled {
		return ErrFinalStatus
	}
	return s.repo.UpdateLineQuantity(ctx, orderID, lineID, quantity)
}

// DeleteLine removes a line from an open order, restoring stock for
// stock-backed lines.
func (s *Service) DeleteLine(ctx context.Context, orderID, lineID int64) error {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == StatusCompleted || order.Status == StatusCancelled {
		return ErrFinalStatus
	}
	return s.repo.DeleteLine(ctx, orderID, lineID)
}

func newDocNumber() string {
	return "PED-" + strings.ToUpper(uuid.NewString()[:8])
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
