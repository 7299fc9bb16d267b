package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
	"github.com/smartinvoice/smartinvoice/internal/application/service"
	"github.com/smartinvoice/smartinvoice/internal/domain/entity"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoices  *service.InvoiceService
	assistant *service.AssistantService
	pdf       *export.PDFRenderer
	report    *export.ExcelReport
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	invoices *service.InvoiceService,
	assistant *service.AssistantService,
	pdf *export.PDFRenderer,
	report *export.ExcelReport,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		invoices:  invoices,
		assistant: assistant,
		pdf:       pdf,
		report:    report,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smartinvoice",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// invoiceRequest carries a draft from the client. Server-assigned fields
// (id, number, timestamps) and derived totals are ignored if supplied.
type invoiceRequest struct {
	Date         *time.Time           `json:"date"`
	DueDate      *time.Time           `json:"dueDate"`
	Client       entity.ClientInfo    `json:"client"`
	Items        []entity.InvoiceItem `json:"items"`
	TaxRate      float64              `json:"taxRate"`
	DiscountRate float64              `json:"discountRate"`
	Status       string               `json:"status"`
	Notes        string               `json:"notes"`
}

// CreateInvoice validates and stores a new invoice.
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	now := time.Now().UTC()
	draft := entity.Invoice{
		Date:         now,
		DueDate:      now.AddDate(0, 0, 30),
		Client:       req.Client,
		Items:        req.Items,
		TaxRate:      req.TaxRate,
		DiscountRate: req.DiscountRate,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if req.Date != nil {
		draft.Date = *req.Date
	}
	if req.DueDate != nil {
		draft.DueDate = *req.DueDate
	}

	inv, err := h.invoices.Create(draft)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: inv})
}

// ListInvoices returns the full collection, most recently created first.
func (h *Handlers) ListInvoices(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.invoices.List()})
}

// RecentInvoices returns the first `limit` invoices (default 5).
func (h *Handlers) RecentInvoices(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, Response{Error: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.invoices.Recent(limit)})
}

// GetInvoice returns one invoice by id.
func (h *Handlers) GetInvoice(c *gin.Context) {
	inv, ok := h.invoices.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, Response{Error: "invoice not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// UpdateInvoice merges a partial patch into an invoice.
func (h *Handlers) UpdateInvoice(c *gin.Context) {
	var patch entity.InvoicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	found, err := h.invoices.Update(c.Param("id"), patch)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Error: err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, Response{Error: "invoice not found"})
		return
	}

	inv, _ := h.invoices.Get(c.Param("id"))
	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// DeleteInvoice removes an invoice permanently.
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	if !h.invoices.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, Response{Error: "invoice not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// InvoicePDF renders one invoice as a downloadable PDF.
func (h *Handlers) InvoicePDF(c *gin.Context) {
	inv, ok := h.invoices.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, Response{Error: "invoice not found"})
		return
	}

	data, err := h.pdf.Render(inv)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to render PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", data)
}

// InvoiceReport returns the collection as an Excel workbook.
func (h *Handlers) InvoiceReport(c *gin.Context) {
	data, err := h.report.Build(h.invoices.List())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to build report"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=invoices.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Stats returns the dashboard aggregates.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.invoices.Stats()})
}

type parseRequest struct {
	Prompt string `json:"prompt"`
}

// ParsePrompt runs a natural-language description through the parser and
// returns the structured result. Each failure category maps to its own
// status code and user-facing message; callers never receive an empty item
// list in place of an error.
func (h *Handlers) ParsePrompt(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	result, err := h.assistant.Parse(c.Request.Context(), req.Prompt)
	if err != nil {
		status, msg := parseFailureStatus(err)
		c.JSON(status, Response{Error: msg})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// parseFailureStatus maps assistant errors onto HTTP statuses.
func parseFailureStatus(err error) (int, string) {
	if errors.Is(err, service.ErrEmptyPrompt) {
		return http.StatusBadRequest, err.Error()
	}
	if errors.Is(err, service.ErrParseInFlight) {
		return http.StatusConflict, err.Error()
	}

	var parseErr *port.ParseError
	if errors.As(err, &parseErr) {
		switch parseErr.Category {
		case port.ParseErrRateLimited:
			return http.StatusTooManyRequests, parseErr.Message
		case port.ParseErrPaymentRequired:
			return http.StatusPaymentRequired, parseErr.Message
		case port.ParseErrMalformed:
			return http.StatusBadGateway, parseErr.Message
		default:
			return http.StatusServiceUnavailable, parseErr.Message
		}
	}

	return http.StatusServiceUnavailable, "Failed to parse. Please try again."
}
