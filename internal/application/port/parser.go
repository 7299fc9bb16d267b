package port

import "context"

// ParsedItem is one proposed line item from the language model. Quantity and
// price are already coerced: a missing or zero quantity defaults to 1, a
// missing price to 0.
type ParsedItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// ParseResult is the structured interpretation of a free-text prompt.
// TaxRate and DiscountRate are pointers so that "not mentioned" stays
// distinguishable from an explicit zero; ClientName is empty when absent.
type ParseResult struct {
	Items        []ParsedItem `json:"items"`
	TaxRate      *float64     `json:"taxRate,omitempty"`
	DiscountRate *float64     `json:"discountRate,omitempty"`
	ClientName   string       `json:"clientName,omitempty"`
}

// ParseErrorCategory classifies parser failures so each maps to a distinct
// user-facing message.
type ParseErrorCategory string

const (
	ParseErrRateLimited     ParseErrorCategory = "rate_limited"
	ParseErrPaymentRequired ParseErrorCategory = "payment_required"
	ParseErrMalformed       ParseErrorCategory = "malformed_response"
	ParseErrUnavailable     ParseErrorCategory = "service_unavailable"
)

// ParseError is a categorized parser failure. Message is safe to show to the
// user; Err keeps the upstream cause for logs.
type ParseError struct {
	Category ParseErrorCategory
	Message  string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return string(e.Category) + ": " + e.Err.Error()
	}
	return string(e.Category) + ": " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError builds a ParseError with the canonical user-facing message
// for the category.
func NewParseError(category ParseErrorCategory, err error) *ParseError {
	return &ParseError{Category: category, Message: parseErrorMessage(category), Err: err}
}

func parseErrorMessage(category ParseErrorCategory) string {
	switch category {
	case ParseErrRateLimited:
		return "Rate limit exceeded. Please try again in a moment."
	case ParseErrPaymentRequired:
		return "AI credits exhausted. Please add credits to continue."
	case ParseErrMalformed:
		return "Could not parse invoice details. Please try a clearer description."
	default:
		return "Failed to parse. Please try again."
	}
}

// InvoiceParser turns a natural-language description into a ParseResult.
//
// Failures are *ParseError values and never an empty result: callers must not
// treat any failure as "zero items", or AI assistance would silently wipe
// user input. The underlying model is not deterministic, so two calls with
// the same prompt may disagree.
type InvoiceParser interface {
	Parse(ctx context.Context, prompt string) (*ParseResult, error)
}
