package debts

// VATRate is the Venezuelan IVA applied to retail prices.
const VATRate = 0.16

// Breakdown splits a VAT-inclusive amount into base and tax.
type Breakdown struct {
	Base  float64 `json:"base"`
	Tax   float64 `json:"tax"`
	Total float64 `json:"total"`
}

// ExclusivePrice strips the VAT from a tax-inclusive price.
func ExclusivePrice(inclusive float64) float64 {
	return inclusive * 100 / 116
}

// BreakdownFromTotal decomposes a VAT-inclusive total.
func BreakdownFromTotal(total float64) Breakdown {
	base := ExclusivePrice(total)
	return Breakdown{Base: base, Tax: total - base, Total: total}
}
