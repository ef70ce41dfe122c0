package orders

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abasto/abasto/internal/cart"
	"github.com/abasto/abasto/internal/customers"
	"github.com/abasto/abasto/internal/debts"
	"github.com/abasto/abasto/internal/shared"
)

type memoryRepository struct {
	orders map[int64]*Order
	stock  map[int64]int
	nextID int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{orders: make(map[int64]*Order), stock: make(map[int64]int), nextID: 1}
}

func (m *memoryRepository) adjustStock(productID int64, delta int) error {
	if m.stock[productID]+delta < 0 {
		return ErrInsufficientStock
	}
	m.stock[productID] += delta
	return nil
}

func (m *memoryRepository) Create(_ context.Context, o *Order) error {
	for i := range o.Lines {
		line := &o.Lines[i]
		if !line.IsCustom && line.ProductID != nil {
			if err := m.adjustStock(*line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}
		line.ID = m.nextID
		m.nextID++
	}
	o.ID = m.nextID
	m.nextID++
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	copied.Lines = append([]Line(nil), o.Lines...)
	return &copied, nil
}

func (m *memoryRepository) List(_ context.Context, f ListFilters) ([]ListItem, error) {
	var items []ListItem
	for _, o := range m.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		items = append(items, ListItem{
			ID: o.ID, DocNumber: o.DocNumber, CustomerName: o.CustomerName,
			CreatedAt: o.CreatedAt, Total: o.Total(), Status: o.Status,
		})
	}
	return items, nil
}

func (m *memoryRepository) UpdateStatus(_ context.Context, id int64, status Status) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *memoryRepository) SetLinePrice(_ context.Context, orderID, lineID int64, price float64) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			o.Lines[i].UnitPrice = price
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepository) UpdateLineQuantity(_ context.Context, orderID, lineID int64, quantity int) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	for i := range o.Lines {
		line := &o.Lines[i]
		if line.ID != lineID {
			continue
		}
		if !line.IsCustom && line.ProductID != nil {
			if err := m.adjustStock(*line.ProductID, line.Quantity-quantity); err != nil {
				return err
			}
		}
		line.Quantity = quantity
		return nil
	}
	return ErrNotFound
}

func (m *memoryRepository) DeleteLine(_ context.Context, orderID, lineID int64) error {
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	for i := range o.Lines {
		line := o.Lines[i]
		if line.ID != lineID {
			continue
		}
		if !line.IsCustom && line.ProductID != nil {
			if err := m.adjustStock(*line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
		return nil
	}
	return ErrNotFound
}

func (m *memoryRepository) CancelAndDelete(_ context.Context, id int64) error {
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	for _, line := range o.Lines {
		if !line.IsCustom && line.ProductID != nil {
			if err := m.adjustStock(*line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
	}
	delete(m.orders, id)
	return nil
}

type fakeCart struct {
	items   []cart.ViewItem
	cleared bool
}

func (f *fakeCart) Items(_ context.Context, _ *shared.Session) ([]cart.ViewItem, float64, error) {
	total := 0.0
	for _, item := range f.items {
		total += item.Subtotal
	}
	return f.items, total, nil
}

func (f *fakeCart) Clear(_ *shared.Session) {
	f.items = nil
	f.cleared = true
}

type fakeResolver struct {
	nextID int64
	byName map[string]*customers.Customer
}

func (f *fakeResolver) FindOrCreate(_ context.Context, req customers.UpsertRequest) (*customers.Customer, error) {
	if c, ok := f.byName[req.Name]; ok {
		return c, nil
	}
	f.nextID++
	c := &customers.Customer{ID: f.nextID, Name: req.Name, Identification: req.Identification}
	if f.byName == nil {
		f.byName = map[string]*customers.Customer{}
	}
	f.byName[req.Name] = c
	return c, nil
}

type fakeDebtOpener struct {
	created []struct {
		customerID int64
		lines      []debts.NewLine
	}
}

func (f *fakeDebtOpener) CreateFromCapturedLines(_ context.Context, customerID int64, lines []debts.NewLine) (*debts.Debt, error) {
	f.created = append(f.created, struct {
		customerID int64
		lines      []debts.NewLine
	}{customerID, lines})
	out := &debts.Debt{ID: int64(len(f.created)), CustomerID: customerID, Status: debts.StatusPending}
	for _, l := range lines {
		price := 0.0
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		out.Lines = append(out.Lines, debts.Line{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: price})
	}
	return out, nil
}

type fixture struct {
	svc      *Service
	repo     *memoryRepository
	cart     *fakeCart
	resolver *fakeResolver
	opener   *fakeDebtOpener
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemoryRepository()
	repo.stock[1] = 5
	fc := &fakeCart{items: []cart.ViewItem{
		{Key: "1", ProductID: 1, Name: "Silla", Quantity: 2, Price: 25, Subtotal: 50},
		{Key: "custom_2_abc", ProductID: 2, Name: "Cortina a medida", IsCustom: true, Quantity: 1, Price: 0,
			Custom: &cart.CustomSpec{Measurements: "2m", Colors: "azul", Material: "lino"}},
	}}
	resolver := &fakeResolver{}
	opener := &fakeDebtOpener{}
	svc := NewService(repo, fc, resolver, opener, nil, slog.Default())
	return &fixture{svc: svc, repo: repo, cart: fc, resolver: resolver, opener: opener}
}

func validForm() CheckoutForm {
	return CheckoutForm{Identification: "V-12345678", Name: "María Pérez", Phone: "0414-5550000"}
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, nil, validForm(), "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.NotEmpty(t, order.DocNumber)
	require.Len(t, order.Lines, 2)
	require.Equal(t, 50.0, order.Total())
	require.Equal(t, "V-12345678", order.CustomerIdentification)

	// Stock moved only for the stock-backed line.
	require.Equal(t, 3, f.repo.stock[1])
	require.True(t, f.cart.cleared)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.cart.items = nil
	_, err := f.svc.Checkout(context.Background(), nil, validForm(), "")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutValidatesForm(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), nil, CheckoutForm{Name: "Sin Cédula"}, "")
	require.Error(t, err)
	require.False(t, f.cart.cleared)
	require.Equal(t, 5, f.repo.stock[1])
}

func TestCompletionBlockedByUnpricedCustomLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, nil, validForm(), "")
	require.NoError(t, err)

	err = f.svc.ChangeStatus(ctx, order.ID, StatusCompleted)
	var unpriced *UnpricedCustomLinesError
	require.ErrorAs(t, err, &unpriced)
	require.Contains(t, unpriced.ProductNames, "Cortina a medida")
	require.Empty(t, f.opener.created)
}

func TestCompletionOpensDebtAtCapturedPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, nil, validForm(), "")
	require.NoError(t, err)

	var customLine Line
	for _, l := range order.Lines {
		if l.IsCustom {
			customLine = l
		}
	}
	require.NoError(t, f.svc.SetLinePrice(ctx, order.ID, customLine.ID, 80))
	require.NoError(t, f.svc.ChangeStatus(ctx, order.ID, StatusCompleted))

	require.Len(t, f.opener.created, 1)
	created := f.opener.created[0]
	require.Equal(t, order.CustomerID, created.customerID)

	total := 0.0
	for _, l := range created.lines {
		require.NotNil(t, l.UnitPrice)
		total += *l.UnitPrice * float64(l.Quantity)
	}
	require.Equal(t, 130.0, total)

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)

	// No double completion.
	require.ErrorIs(t, f.svc.ChangeStatus(ctx, order.ID, StatusProcessing), ErrFinalStatus)
}

func TestCancellationRestoresStockAndRemovesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, nil, validForm(), "")
	require.NoError(t, err)
	require.Equal(t, 3, f.repo.stock[1])

	require.NoError(t, f.svc.ChangeStatus(ctx, order.ID, StatusCancelled))
	require.Equal(t, 5, f.repo.stock[1])

	_, err = f.svc.Get(ctx, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetLinePriceRejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, nil, validForm(), "")
	require.NoError(t, err)

	err = f.svc.SetLinePrice(ctx, order.ID, order.Lines[0].ID, 0)
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestUpdateLineQuantityMovesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, nil, validForm(), "")
	require.NoError(t, err)

	var stockLine Line
	for _, l := range order.Lines {
		if !l.IsCustom {
			stockLine = l
		}
	}
	require.NoError(t, f.svc.UpdateLineQuantity(ctx, order.ID, stockLine.ID, 4))
	require.Equal(t, 1, f.repo.stock[1])

	err = f.svc.UpdateLineQuantity(ctx, order.ID, stockLine.ID, 10)
	require.ErrorIs(t, err, ErrInsufficientStock)
}
