package debts

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryProduct struct {
	name     string
	price    float64
	quantity int
}

type memoryRepository struct {
	debts    map[int64]*Debt
	products map[int64]*memoryProduct
	nextID   int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		debts:    make(map[int64]*Debt),
		products: make(map[int64]*memoryProduct),
		nextID:   1,
	}
}

func (m *memoryRepository) Create(_ context.Context, customerID int64, lines []NewLine, adjustStock bool) (*Debt, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	d := &Debt{ID: m.nextID, CustomerID: customerID, Status: StatusPending, CreatedAt: time.Now()}
	m.nextID++
	for _, line := range lines {
		name := ""
		price := 0.0
		if line.ProductID != nil {
			p, ok := m.products[*line.ProductID]
			if !ok {
				return nil, ErrNotFound
			}
			name = p.name
			price = p.price
			if adjustStock {
				if p.quantity < line.Quantity {
					return nil, ErrInsufficientStock
				}
				p.quantity -= line.Quantity
			}
		}
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		d.Lines = append(d.Lines, Line{
			ID: m.nextID, DebtID: d.ID, ProductID: line.ProductID,
			ProductName: name, Quantity: line.Quantity, UnitPrice: price,
		})
		m.nextID++
	}
	m.debts[d.ID] = d
	copied := *d
	return &copied, nil
}

func (m *memoryRepository) Get(_ context.Context, id int64) (*Debt, error) {
	d, ok := m.debts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *memoryRepository) List(_ context.Context, f ListFilters) ([]ListItem, error) {
	var items []ListItem
	for _, d := range m.debts {
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.CustomerID != nil && d.CustomerID != *f.CustomerID {
			continue
		}
		items = append(items, ListItem{
			ID: d.ID, CustomerID: d.CustomerID, CreatedAt: d.CreatedAt,
			Status: d.Status, Total: d.Total(), Balance: d.Balance(),
		})
	}
	return items, nil
}

func (m *memoryRepository) AddPayment(_ context.Context, debtID int64, fn func(d *Debt) (Payment, bool, error)) (*Debt, error) {
	d, ok := m.debts[debtID]
	if !ok {
		return nil, ErrNotFound
	}
	payment, settle, err := fn(d)
	if err != nil {
		return nil, err
	}
	payment.ID = m.nextID
	m.nextID++
	payment.DebtID = debtID
	d.Payments = append(d.Payments, payment)
	if settle {
		d.Status = StatusPaid
		settledAt := payment.PaidAt
		d.SettledAt = &settledAt
	}
	copied := *d
	return &copied, nil
}

func (m *memoryRepository) UpdateStatus(_ context.Context, id int64, status Status, settledAt *time.Time) error {
	d, ok := m.debts[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.SettledAt = settledAt
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.debts[id]; !ok {
		return ErrNotFound
	}
	delete(m.debts, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func newDebtFixture(t *testing.T) (*Service, *memoryRepository) {
	t.Helper()
	repo := newMemoryRepository()
	repo.products[1] = &memoryProduct{name: "Silla", price: 40, quantity: 10}
	repo.products[2] = &memoryProduct{name: "Mesa", price: 120, quantity: 2}
	return NewService(repo, nil, slog.Default()), repo
}

func TestCreateDecrementsStockAndCapturesPrices(t *testing.T) {
	svc, repo := newDebtFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 7, []NewLine{
		{ProductID: ptr(int64(1)), Quantity: 2},
		{ProductID: ptr(int64(2)), Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, d.Status)
	require.Equal(t, 200.0, d.Total())
	require.Equal(t, 8, repo.products[1].quantity)
	require.Equal(t, 1, repo.products[2].quantity)

	// A later catalog price change must not alter the debt total.
	repo.products[1].price = 99
	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 200.0, got.Total())
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	svc, _ := newDebtFixture(t)
	_, err := svc.Create(context.Background(), 7, []NewLine{{ProductID: ptr(int64(2)), Quantity: 5}})
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRegisterPaymentClampsOverpayment(t *testing.T) {
	svc, _ := newDebtFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 7, []NewLine{{ProductID: ptr(int64(1)), Quantity: 1}})
	require.NoError(t, err)

	paid, err := svc.RegisterPayment(ctx, d.ID, 500, nil, "")
	require.NoError(t, err)
	require.Len(t, paid.Payments, 1)
	require.Equal(t, 40.0, paid.Payments[0].Amount)
	require.Equal(t, StatusPaid, paid.Status)
	require.Zero(t, paid.Balance())
}

func TestRegisterPaymentPartialThenSettle(t *testing.T) {
	svc, _ := newDebtFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 7, []NewLine{{ProductID: ptr(int64(2)), Quantity: 1}})
	require.NoError(t, err)

	partial, err := svc.RegisterPayment(ctx, d.ID, 50, ptr("abono inicial"), "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, partial.Status)
	require.Equal(t, 70.0, partial.Balance())

	settled, err := svc.RegisterPayment(ctx, d.ID, 70, nil, "")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, settled.Status)
	require.NotNil(t, settled.SettledAt)

	_, err = svc.RegisterPayment(ctx, d.ID, 10, nil, "")
	require.ErrorIs(t, err, ErrAlreadySettled)
}

func TestRegisterPaymentRejectsNonPositiveAmounts(t *testing.T) {
	svc, _ := newDebtFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 7, []NewLine{{ProductID: ptr(int64(1)), Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.RegisterPayment(ctx, d.ID, 0, nil, "")
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.RegisterPayment(ctx, d.ID, -5, nil, "")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSettleAbsorbsFloatDrift(t *testing.T) {
	svc, _ := newDebtFixture(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, 7, []NewLine{{UnitPrice: ptr(10.0), Quantity: 3}})
	require.NoError(t, err)

	// Three abonos that leave a sub-millicent residue.
	for _, amount := range []float64{10.0001, 9.9999, 10.0} {
		d, err = svc.RegisterPayment(ctx, d.ID, amount, nil, "")
		require.NoError(t, err)
	}
	require.Equal(t, StatusPaid, d.Status)
	require.Zero(t, d.Balance())
}
