package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvoicePatchApply(t *testing.T) {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	inv := Invoice{
		ID:            "id-1",
		InvoiceNumber: "INV-ABC-0001",
		Date:          created,
		DueDate:       created.AddDate(0, 0, 30),
		Client:        ClientInfo{Name: "Acme Corp", Email: "billing@acme.test"},
		Items:         []InvoiceItem{{ID: "it-1", Name: "Design", Quantity: 1, Price: 500, Total: 500}},
		Subtotal:      500,
		Total:         500,
		Status:        StatusDraft,
		Notes:         "net 30",
		CreatedAt:     created,
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		got := inv
		(&InvoicePatch{}).Apply(&got)
		assert.Equal(t, inv, got)
	})

	t.Run("non-nil fields overwrite", func(t *testing.T) {
		got := inv
		status := StatusSent
		notes := ""
		total := 620.0
		(&InvoicePatch{Status: &status, Notes: &notes, Total: &total}).Apply(&got)

		assert.Equal(t, StatusSent, got.Status)
		assert.Equal(t, "", got.Notes, "an explicit empty string clears the field")
		assert.Equal(t, 620.0, got.Total)

		// Untouched fields survive.
		assert.Equal(t, inv.ID, got.ID)
		assert.Equal(t, inv.Client, got.Client)
		assert.Equal(t, inv.Items, got.Items)
	})

	t.Run("items replace wholesale", func(t *testing.T) {
		got := inv
		replacement := []InvoiceItem{
			{ID: "it-2", Name: "Hosting", Quantity: 12, Price: 20, Total: 240},
		}
		(&InvoicePatch{Items: &replacement}).Apply(&got)
		assert.Equal(t, replacement, got.Items)
	})

	t.Run("empty item slice clears the list", func(t *testing.T) {
		got := inv
		empty := []InvoiceItem{}
		(&InvoicePatch{Items: &empty}).Apply(&got)
		assert.Empty(t, got.Items)
	})
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusDraft))
	assert.True(t, ValidStatus(StatusSent))
	assert.True(t, ValidStatus(StatusPaid))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("Paid"))
	assert.False(t, ValidStatus("archived"))
}
