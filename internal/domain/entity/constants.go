package entity

// Status constants for Invoice
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
	StatusPaid  = "paid"
)

// ValidStatus reports whether s is a known invoice status.
// Transitions between statuses are intentionally unrestricted: an invoice
// marked paid can be moved back to sent, matching the editing flow where
// status is a plain dropdown rather than a state machine.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid:
		return true
	}
	return false
}
