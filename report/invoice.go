package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abasto/abasto/internal/company"
	"github.com/abasto/abasto/internal/customers"
	"github.com/abasto/abasto/internal/debts"
)

var moneyPrinter = message.NewPrinter(language.Spanish)

func formatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}

// invoiceLine is a priced position on the rendered document.
type invoiceLine struct {
	ProductName string
	Quantity    int
	UnitPrice   string
	Subtotal    string
}

type invoicePayment struct {
	PaidAt string
	Memo   string
	Amount string
}

// invoiceData feeds the invoice template.
type invoiceData struct {
	Company      *company.Profile
	CustomerName string
	DebtID       int64
	IssuedAt     string
	Status       string
	Lines        []invoiceLine
	Payments     []invoicePayment
	Base         string
	VAT          string
	Total        string
	Paid         string
	Balance      string
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Nota de entrega #{{.DebtID}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 18px; margin-bottom: 0; }
  .meta { color: #555; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin: 12px 0; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #f2f2f2; }
  td.num, th.num { text-align: right; }
  .totals td { border: none; }
  .totals { width: 40%; margin-left: auto; }
  .balance { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Company.Name}}</h1>
<div class="meta">
  {{with .Company.RIF}}RIF: {{.}}<br>{{end}}
  {{with .Company.Address}}{{.}}<br>{{end}}
  {{with .Company.Phone}}Tel: {{.}}{{end}}
</div>

<h2>Nota de entrega #{{.DebtID}}</h2>
<p>Cliente: {{.CustomerName}}<br>Fecha: {{.IssuedAt}}<br>Estado: {{.Status}}</p>

<table>
  <thead>
    <tr><th>Producto</th><th class="num">Cantidad</th><th class="num">Precio</th><th class="num">Subtotal</th></tr>
  </thead>
  <tbody>
    {{range .Lines}}
    <tr><td>{{.ProductName}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.UnitPrice}}</td><td class="num">{{.Subtotal}}</td></tr>
    {{end}}
  </tbody>
</table>

{{if .Payments}}
<h3>Abonos</h3>
<table>
  <thead>
    <tr><th>Fecha</th><th>Nota</th><th class="num">Monto</th></tr>
  </thead>
  <tbody>
    {{range .Payments}}
    <tr><td>{{.PaidAt}}</td><td>{{.Memo}}</td><td class="num">{{.Amount}}</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}

<table class="totals">
  <tr><td>Base imponible</td><td class="num">{{.Base}}</td></tr>
  <tr><td>IVA (16%)</td><td class="num">{{.VAT}}</td></tr>
  <tr><td>Total</td><td class="num">{{.Total}}</td></tr>
  <tr><td>Abonado</td><td class="num">{{.Paid}}</td></tr>
  <tr class="balance"><td>Saldo pendiente</td><td class="num">{{.Balance}}</td></tr>
</table>
</body>
</html>
`))

// statusLabel localizes the debt status for the document.
func statusLabel(s debts.Status) string {
	if s == debts.StatusPaid {
		return "Pagada"
	}
	return "Pendiente"
}

// InvoiceHTML renders the delivery note for a debt as standalone HTML,
// ready for PDF conversion.
func InvoiceHTML(profile *company.Profile, customer *customers.Customer, debt *debts.Debt) (string, error) {
	if profile == nil || debt == nil {
		return "", errors.New("report: missing invoice inputs")
	}
	customerName := "Cliente"
	if customer != nil {
		customerName = customer.Name
	}

	breakdown := debts.BreakdownFromTotal(debt.Total())
	data := invoiceData{
		Company:      profile,
		CustomerName: customerName,
		DebtID:       debt.ID,
		IssuedAt:     debt.CreatedAt.Format("02/01/2006"),
		Status:       statusLabel(debt.Status),
		Base:         formatMoney(breakdown.Base),
		VAT:          formatMoney(breakdown.Tax),
		Total:        formatMoney(debt.Total()),
		Paid:         formatMoney(debt.Paid()),
		Balance:      formatMoney(debt.Balance()),
	}
	for _, l := range debt.Lines {
		data.Lines = append(data.Lines, invoiceLine{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   formatMoney(l.UnitPrice),
			Subtotal:    formatMoney(l.Subtotal()),
		})
	}
	for _, p := range debt.Payments {
		memo := ""
		if p.Memo != nil {
			memo = *p.Memo
		}
		data.Payments = append(data.Payments, invoicePayment{
			PaidAt: p.PaidAt.Format("02/01/2006"),
			Memo:   memo,
			Amount: formatMoney(p.Amount),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DebtReader loads a debt with its lines and payments.
type DebtReader interface {
	Get(ctx context.Context, id int64) (*debts.Debt, error)
}

// CustomerReader resolves the customer referenced by a debt.
type CustomerReader interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
}

// ProfileReader loads the company profile used on the document header.
type ProfileReader interface {
	Profile(ctx context.Context) (*company.Profile, error)
}

// Handler manages report endpoints.
type Handler struct {
	client    *Client
	debts     DebtReader
	customers CustomerReader
	company   ProfileReader
	logger    *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, debtReader DebtReader, customerReader CustomerReader, profileReader ProfileReader, logger *slog.Logger) *Handler {
	return &Handler{
		client:    client,
		debts:     debtReader,
		customers: customerReader,
		company:   profileReader,
		logger:    logger,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/debts/{id}.pdf", h.debtPDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) debtPDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	debt, err := h.debts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, debts.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("load debt for invoice", slog.Int64("debt_id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	profile, err := h.company.Profile(r.Context())
	if err != nil {
		h.logger.Error("load company profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var customer *customers.Customer
	if c, err := h.customers.Get(r.Context(), debt.CustomerID); err == nil {
		customer = c
	}

	html, err := InvoiceHTML(profile, customer, debt)
	if err != nil {
		h.logger.Error("render invoice html", slog.Int64("debt_id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	pdf, err := h.client.RenderHTML(ctx, html)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Int64("debt_id", id), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=nota-%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
