package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
	"github.com/smartinvoice/smartinvoice/internal/domain/entity"
	"github.com/smartinvoice/smartinvoice/internal/domain/pricing"
)

// Save validation failures. Each rule has its own message so the caller can
// surface the specific violation.
var (
	ErrClientNameRequired = errors.New("please enter a client name")
	ErrNoItems            = errors.New("please add at least one item")
	ErrUnnamedItem        = errors.New("please enter a name for all items")
	ErrUnknownStatus      = errors.New("unknown invoice status")
)

// InvoiceService owns the invoice lifecycle: it validates drafts, keeps the
// derived totals consistent with the items and rates, and applies parser
// results to in-progress drafts.
type InvoiceService struct {
	repo   port.InvoiceRepository
	logger *zap.Logger
}

// NewInvoiceService creates the invoice service.
func NewInvoiceService(repo port.InvoiceRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{repo: repo, logger: logger}
}

// ValidateDraft applies the save rules: the client must be named, there must
// be at least one item and every item must be named. A violation blocks the
// save and leaves the repository untouched.
func ValidateDraft(draft *entity.Invoice) error {
	if strings.TrimSpace(draft.Client.Name) == "" {
		return ErrClientNameRequired
	}
	if len(draft.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range draft.Items {
		if strings.TrimSpace(item.Name) == "" {
			return ErrUnnamedItem
		}
	}
	return nil
}

// Create validates the draft, normalizes its items, recomputes the derived
// totals and hands it to the repository, which assigns id, number and
// timestamps.
func (s *InvoiceService) Create(draft entity.Invoice) (*entity.Invoice, error) {
	if draft.Status == "" {
		draft.Status = entity.StatusDraft
	}
	if !entity.ValidStatus(draft.Status) {
		return nil, ErrUnknownStatus
	}
	if err := ValidateDraft(&draft); err != nil {
		return nil, err
	}

	normalizeItems(draft.Items)
	applyTotals(&draft)

	return s.repo.Create(draft), nil
}

// Update merges a partial patch into an existing invoice. Derived totals are
// recomputed from the patched items and rates so the stored record never
// carries stale amounts. An unknown id is reported as found=false, not as an
// error.
func (s *InvoiceService) Update(id string, patch entity.InvoicePatch) (bool, error) {
	if patch.Status != nil && !entity.ValidStatus(*patch.Status) {
		return false, ErrUnknownStatus
	}

	current, ok := s.repo.Get(id)
	if !ok {
		return false, nil
	}

	// Recompute derived fields against a patched copy; the patch the
	// repository sees always carries consistent totals.
	next := *current
	patch.Apply(&next)
	if patch.Items != nil {
		normalizeItems(*patch.Items)
	}
	applyTotals(&next)

	patch.Subtotal = &next.Subtotal
	patch.DiscountAmount = &next.DiscountAmount
	patch.TaxAmount = &next.TaxAmount
	patch.Total = &next.Total

	return s.repo.Update(id, patch), nil
}

// UpdateStatus changes only the status of an invoice.
func (s *InvoiceService) UpdateStatus(id, status string) (bool, error) {
	if !entity.ValidStatus(status) {
		return false, ErrUnknownStatus
	}
	return s.repo.Update(id, entity.InvoicePatch{Status: &status}), nil
}

// Get returns the invoice, or ok=false when absent.
func (s *InvoiceService) Get(id string) (*entity.Invoice, bool) {
	return s.repo.Get(id)
}

// Delete removes the invoice. Unrecoverable; reports found=false on an
// unknown id.
func (s *InvoiceService) Delete(id string) bool {
	return s.repo.Delete(id)
}

// List returns the collection, most recently created first.
func (s *InvoiceService) List() []*entity.Invoice {
	return s.repo.List()
}

// Stats returns the dashboard aggregates.
func (s *InvoiceService) Stats() entity.DashboardStats {
	return s.repo.Stats()
}

// Recent returns at most limit invoices in collection order.
func (s *InvoiceService) Recent(limit int) []*entity.Invoice {
	return s.repo.Recent(limit)
}

// ApplyParseResult merges a parser result into an in-progress draft. The
// merge decides what AI assistance may clobber: items replace wholesale only
// when the result has any, rates overwrite only when mentioned in the prompt,
// and the client name overwrites only when present and non-empty. Derived
// totals are recomputed afterwards.
func (s *InvoiceService) ApplyParseResult(draft *entity.Invoice, result *port.ParseResult) {
	if len(result.Items) > 0 {
		items := make([]entity.InvoiceItem, 0, len(result.Items))
		for _, it := range result.Items {
			items = append(items, entity.InvoiceItem{
				ID:       uuid.NewString(),
				Name:     it.Name,
				Quantity: it.Quantity,
				Price:    it.Price,
				Total:    pricing.LineTotal(it.Quantity, it.Price),
			})
		}
		draft.Items = items
	}
	if result.TaxRate != nil {
		draft.TaxRate = *result.TaxRate
	}
	if result.DiscountRate != nil {
		draft.DiscountRate = *result.DiscountRate
	}
	if result.ClientName != "" {
		draft.Client.Name = result.ClientName
	}
	applyTotals(draft)
}

// normalizeItems assigns missing item ids and recomputes line totals in
// place. Line totals are always derived; a caller-supplied total is
// discarded.
func normalizeItems(items []entity.InvoiceItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].Total = pricing.LineTotal(items[i].Quantity, items[i].Price)
	}
}

// applyTotals recomputes the derived amounts from the invoice's items and
// rates.
func applyTotals(inv *entity.Invoice) {
	totals := pricing.Compute(inv.Items, inv.TaxRate, inv.DiscountRate)
	inv.Subtotal = totals.Subtotal
	inv.DiscountAmount = totals.DiscountAmount
	inv.TaxAmount = totals.TaxAmount
	inv.Total = totals.Total
}
