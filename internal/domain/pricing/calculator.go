// Package pricing computes invoice totals. Everything here is pure float64
// arithmetic: no clamping, no rounding, no side effects, so it is safe to call
// on every edit. Rounding for display is the presentation layer's job.
package pricing

import "github.com/smartinvoice/smartinvoice/internal/domain/entity"

// Totals holds the derived amounts for one invoice.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	Total          float64 `json:"total"`
}

// LineTotal returns quantity multiplied by unit price. Negative inputs pass
// through arithmetically; bounds are enforced upstream, not here.
func LineTotal(quantity, price float64) float64 {
	return quantity * price
}

// Compute derives subtotal, discount, tax and grand total from the item list
// and the two percentage rates. The discount applies to the subtotal and tax
// is charged on the post-discount amount. Rates are expected in [0,100] but
// out-of-range values are passed through unchanged; the calculator is a pure
// arithmetic mapping over its inputs.
func Compute(items []entity.InvoiceItem, taxRate, discountRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Total
	}

	discountAmount := subtotal * discountRate / 100
	afterDiscount := subtotal - discountAmount
	taxAmount := afterDiscount * taxRate / 100

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          afterDiscount + taxAmount,
	}
}
