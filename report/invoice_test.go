package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/abasto/abasto/testing"

	"github.com/abasto/abasto/internal/company"
	"github.com/abasto/abasto/internal/customers"
	"github.com/abasto/abasto/internal/debts"
)

func TestInvoiceHTMLRendersHeaderLinesAndTotals(t *testing.T) {
	profile := &company.Profile{
		Name:    "Inversiones El Abasto",
		RIF:     "J-12345678-9",
		Address: "Av. Bolívar, Maracay",
		Phone:   "0243-5551234",
	}
	customer := &customers.Customer{ID: 7, Name: "María Pérez"}

	memo := "abono inicial"
	debt := &debts.Debt{
		ID:         42,
		CustomerID: 7,
		Status:     debts.StatusPending,
		CreatedAt:  time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
		Lines: []debts.Line{
			{ProductName: "Harina de maíz", Quantity: 3, UnitPrice: 10},
			{ProductName: "Cortina a medida", Quantity: 1, UnitPrice: 100},
		},
		Payments: []debts.Payment{
			{Amount: 30, Memo: &memo, PaidAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)},
		},
	}

	html, err := InvoiceHTML(profile, customer, debt)
	require.NoError(t, err)

	require.Contains(t, html, "Inversiones El Abasto")
	require.Contains(t, html, "RIF: J-12345678-9")
	require.Contains(t, html, "Av. Bolívar, Maracay")
	require.Contains(t, html, "María Pérez")
	require.Contains(t, html, "Nota de entrega #42")
	require.Contains(t, html, "15/08/2026")
	require.Contains(t, html, "Pendiente")

	require.Contains(t, html, "Harina de maíz")
	require.Contains(t, html, "Cortina a medida")
	// 3 × 10 + 1 × 100 = 130 total, 30 paid, 100 outstanding.
	require.Contains(t, html, "130,00")
	require.Contains(t, html, "30,00")
	require.Contains(t, html, "100,00")
	require.Contains(t, html, "abono inicial")
}

func TestInvoiceHTMLVATBreakdownMatchesTotal(t *testing.T) {
	profile := &company.Profile{Name: "Abasto"}
	debt := &debts.Debt{
		ID:        1,
		Status:    debts.StatusPaid,
		CreatedAt: time.Now(),
		Lines:     []debts.Line{{ProductName: "Café", Quantity: 1, UnitPrice: 116}},
	}

	html, err := InvoiceHTML(profile, nil, debt)
	require.NoError(t, err)

	// 116 inclusive splits into 100 base + 16 VAT.
	require.Contains(t, html, "100,00")
	require.Contains(t, html, "16,00")
	require.Contains(t, html, "Pagada")
	// Without a resolved customer the document uses a generic label.
	require.Contains(t, html, "Cliente")
	require.False(t, strings.Contains(html, "RIF:"))
}

func TestInvoiceHTMLRequiresProfileAndDebt(t *testing.T) {
	_, err := InvoiceHTML(nil, nil, &debts.Debt{})
	require.Error(t, err)
	_, err = InvoiceHTML(&company.Profile{}, nil, nil)
	require.Error(t, err)
}
