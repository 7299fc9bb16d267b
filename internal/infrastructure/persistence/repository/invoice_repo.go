package repository

import (
	"encoding/json"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
	"github.com/smartinvoice/smartinvoice/internal/domain/entity"
)

const invoiceNumberPrefix = "INV"

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// InvoiceRepository implements port.InvoiceRepository over an in-memory
// collection with write-through persistence to a Store. All methods are
// synchronous and complete before returning; the repository is built for a
// single active caller and performs no locking.
type InvoiceRepository struct {
	store  port.Store
	logger *zap.Logger

	// most recently created first; Create prepends
	invoices []*entity.Invoice
}

// NewInvoiceRepository creates a repository backed by the given store.
// Call Load before first use.
func NewInvoiceRepository(store port.Store, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		store:  store,
		logger: logger,
	}
}

// Load populates the collection from the store. A read failure or a malformed
// blob degrades to an empty collection and is logged, never raised.
func (r *InvoiceRepository) Load() {
	r.invoices = r.readFresh()
}

// readFresh reads the collection straight from the store, falling back to
// empty on any failure. Create uses it to pick up out-of-process writes made
// since the last Load.
func (r *InvoiceRepository) readFresh() []*entity.Invoice {
	data, ok, err := r.store.Read()
	if err != nil {
		r.logger.Warn("Failed to load invoices from storage", zap.Error(err))
		return []*entity.Invoice{}
	}
	if !ok {
		return []*entity.Invoice{}
	}

	var invoices []*entity.Invoice
	if err := json.Unmarshal(data, &invoices); err != nil {
		r.logger.Warn("Stored invoice data is malformed, starting empty", zap.Error(err))
		return []*entity.Invoice{}
	}
	if invoices == nil {
		invoices = []*entity.Invoice{}
	}
	return invoices
}

// persist writes the full collection through to the store. Failures are
// logged and swallowed: the in-memory state keeps the mutation and the next
// successful write reconverges storage.
func (r *InvoiceRepository) persist() {
	data, err := json.Marshal(r.invoices)
	if err != nil {
		r.logger.Error("Failed to serialize invoices", zap.Error(err))
		return
	}
	if err := r.store.Write(data); err != nil {
		r.logger.Error("Failed to save invoices to storage", zap.Error(err))
	}
}

// Create assigns server-side fields and persists the grown collection.
// The collection is re-read from the store immediately before insertion so a
// record created by another process since Load is not lost.
func (r *InvoiceRepository) Create(draft entity.Invoice) *entity.Invoice {
	now := time.Now().UTC()

	inv := draft
	inv.ID = uuid.NewString()
	inv.InvoiceNumber = newInvoiceNumber(now)
	inv.CreatedAt = now
	inv.UpdatedAt = now

	r.invoices = append([]*entity.Invoice{&inv}, r.readFresh()...)
	r.persist()

	r.logger.Info("Invoice created",
		zap.String("id", inv.ID),
		zap.String("number", inv.InvoiceNumber))

	return &inv
}

// Update merges the patch into the matching record and bumps UpdatedAt.
// An unknown id is a silent no-op reported as false.
func (r *InvoiceRepository) Update(id string, patch entity.InvoicePatch) bool {
	for _, inv := range r.invoices {
		if inv.ID != id {
			continue
		}
		patch.Apply(inv)
		inv.UpdatedAt = time.Now().UTC()
		r.persist()
		return true
	}
	return false
}

// Delete removes the matching record from the collection and the store.
func (r *InvoiceRepository) Delete(id string) bool {
	for i, inv := range r.invoices {
		if inv.ID == id {
			r.invoices = append(r.invoices[:i], r.invoices[i+1:]...)
			r.persist()
			r.logger.Info("Invoice deleted", zap.String("id", id))
			return true
		}
	}
	return false
}

// Get returns the matching record, or ok=false when absent.
func (r *InvoiceRepository) Get(id string) (*entity.Invoice, bool) {
	for _, inv := range r.invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return nil, false
}

// List returns the collection, most recently created first.
func (r *InvoiceRepository) List() []*entity.Invoice {
	out := make([]*entity.Invoice, len(r.invoices))
	copy(out, r.invoices)
	return out
}

// Stats aggregates the collection for the dashboard.
func (r *InvoiceRepository) Stats() entity.DashboardStats {
	stats := entity.DashboardStats{TotalInvoices: len(r.invoices)}
	for _, inv := range r.invoices {
		if inv.Status == entity.StatusPaid {
			stats.PaidInvoices++
			stats.TotalRevenue += inv.Total
		} else {
			stats.PendingInvoices++
		}
	}
	return stats
}

// Recent returns at most limit records in collection order.
func (r *InvoiceRepository) Recent(limit int) []*entity.Invoice {
	if limit < 0 {
		limit = 0
	}
	if limit > len(r.invoices) {
		limit = len(r.invoices)
	}
	out := make([]*entity.Invoice, limit)
	copy(out, r.invoices[:limit])
	return out
}

// newInvoiceNumber builds a human-readable number from a fixed prefix, the
// millisecond timestamp in base 36 and four random base-36 characters, so
// numbers sort lexically by creation order and collisions are vanishingly
// unlikely.
func newInvoiceNumber(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = base36Upper[rand.IntN(len(base36Upper))]
	}

	return invoiceNumberPrefix + "-" + ts + "-" + string(suffix)
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
