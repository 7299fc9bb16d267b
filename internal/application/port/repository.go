package port

import "github.com/smartinvoice/smartinvoice/internal/domain/entity"

// InvoiceRepository is the single source of truth for the invoice collection
// within a session, synchronized write-through to a Store.
//
// Persistence is best-effort: a failed store write is logged and the in-memory
// state keeps the attempted mutation, so memory and storage may diverge until
// the next successful write. No method panics or surfaces storage errors;
// callers check the returned signals instead.
type InvoiceRepository interface {
	// Load populates the collection from the store. Read failures and
	// malformed blobs degrade to an empty collection.
	Load()

	// Create assigns id, invoice number and timestamps, re-reads the backing
	// blob to pick up out-of-process writes, prepends the record and persists.
	// Returns the fully populated invoice.
	Create(draft entity.Invoice) *entity.Invoice

	// Update merges the patch into the matching record and bumps UpdatedAt.
	// Returns false (and does nothing) when the id is unknown.
	Update(id string, patch entity.InvoicePatch) bool

	// Delete removes the matching record. Returns false when the id is
	// unknown.
	Delete(id string) bool

	// Get returns the matching record, or ok=false when absent.
	Get(id string) (inv *entity.Invoice, ok bool)

	// List returns the full collection, most recently created first.
	List() []*entity.Invoice

	// Stats aggregates the collection for the dashboard.
	Stats() entity.DashboardStats

	// Recent returns at most limit records in collection order.
	Recent(limit int) []*entity.Invoice
}
