package entity

import "time"

// InvoiceItem represents a single line on an invoice.
// Total is derived (quantity multiplied by unit price) and is recomputed by the
// service layer on every edit; it is never set independently.
type InvoiceItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// ClientInfo is the billing recipient. All fields are free text and may be
// empty while an invoice is being edited; no format validation happens here.
type ClientInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Invoice is the persisted invoice record. ID, InvoiceNumber and CreatedAt are
// assigned once by the repository and never change afterwards. The client block
// is a by-value snapshot, not a reference to a client register.
//
// Subtotal, TaxAmount, DiscountAmount and Total are derived fields: they are
// stored as computed and reloaded verbatim, so a persist/reload round trip is
// bit-exact with no re-derivation drift.
type Invoice struct {
	ID             string        `json:"id"`
	InvoiceNumber  string        `json:"invoiceNumber"`
	Date           time.Time     `json:"date"`
	DueDate        time.Time     `json:"dueDate"`
	Client         ClientInfo    `json:"client"`
	Items          []InvoiceItem `json:"items"`
	Subtotal       float64       `json:"subtotal"`
	TaxRate        float64       `json:"taxRate"`
	TaxAmount      float64       `json:"taxAmount"`
	DiscountRate   float64       `json:"discountRate"`
	DiscountAmount float64       `json:"discountAmount"`
	Total          float64       `json:"total"`
	Status         string        `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// InvoicePatch carries a partial update. Nil fields are left untouched by
// Apply. There are deliberately no entries for ID, InvoiceNumber or CreatedAt.
type InvoicePatch struct {
	Date           *time.Time     `json:"date,omitempty"`
	DueDate        *time.Time     `json:"dueDate,omitempty"`
	Client         *ClientInfo    `json:"client,omitempty"`
	Items          *[]InvoiceItem `json:"items,omitempty"`
	Subtotal       *float64       `json:"subtotal,omitempty"`
	TaxRate        *float64       `json:"taxRate,omitempty"`
	TaxAmount      *float64       `json:"taxAmount,omitempty"`
	DiscountRate   *float64       `json:"discountRate,omitempty"`
	DiscountAmount *float64       `json:"discountAmount,omitempty"`
	Total          *float64       `json:"total,omitempty"`
	Status         *string        `json:"status,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

// Apply merges the non-nil patch fields into inv.
func (p *InvoicePatch) Apply(inv *Invoice) {
	if p.Date != nil {
		inv.Date = *p.Date
	}
	if p.DueDate != nil {
		inv.DueDate = *p.DueDate
	}
	if p.Client != nil {
		inv.Client = *p.Client
	}
	if p.Items != nil {
		inv.Items = *p.Items
	}
	if p.Subtotal != nil {
		inv.Subtotal = *p.Subtotal
	}
	if p.TaxRate != nil {
		inv.TaxRate = *p.TaxRate
	}
	if p.TaxAmount != nil {
		inv.TaxAmount = *p.TaxAmount
	}
	if p.DiscountRate != nil {
		inv.DiscountRate = *p.DiscountRate
	}
	if p.DiscountAmount != nil {
		inv.DiscountAmount = *p.DiscountAmount
	}
	if p.Total != nil {
		inv.Total = *p.Total
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
}

// DashboardStats is the aggregate view over the whole collection.
// TotalRevenue sums the grand total of paid invoices only; pending counts
// everything that is not yet paid, drafts included.
type DashboardStats struct {
	TotalInvoices   int     `json:"totalInvoices"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PaidInvoices    int     `json:"paidInvoices"`
	PendingInvoices int     `json:"pendingInvoices"`
}
