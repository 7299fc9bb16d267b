package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
	"github.com/smartinvoice/smartinvoice/internal/application/service"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/export"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/persistence/repository"
)

type memStore struct {
	data []byte
	ok   bool
}

func (m *memStore) Read() ([]byte, bool, error) { return m.data, m.ok, nil }

func (m *memStore) Write(data []byte) error {
	m.data = append([]byte(nil), data...)
	m.ok = true
	return nil
}

type stubParser struct {
	result *port.ParseResult
	err    error
}

func (s *stubParser) Parse(ctx context.Context, prompt string) (*port.ParseResult, error) {
	return s.result, s.err
}

func newTestRouter(t *testing.T, parser port.InvoiceParser) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	repo := repository.NewInvoiceRepository(&memStore{}, logger)
	repo.Load()

	if parser == nil {
		parser = &stubParser{result: &port.ParseResult{Items: []port.ParsedItem{}}}
	}

	server := NewServer(
		ServerConfig{Host: "127.0.0.1", Port: 0},
		service.NewInvoiceService(repo, logger),
		service.NewAssistantService(parser, logger),
		export.NewPDFRenderer(export.PDFConfig{CompanyName: "SmartInvoice"}, logger),
		export.NewExcelReport(logger),
		logger,
	)
	return server.Router()
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func validInvoiceBody() map[string]any {
	return map[string]any{
		"client": map[string]any{"name": "Acme Corp", "email": "billing@acme.test"},
		"items": []map[string]any{
			{"name": "Design", "quantity": 2, "price": 300},
			{"name": "Hosting", "quantity": 1, "price": 400},
		},
		"taxRate":      18,
		"discountRate": 10,
	}
}

func createInvoice(t *testing.T, router *gin.Engine) map[string]any {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/invoices", validInvoiceBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeResponse(t, w)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	return data
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, nil)
	w := doJSON(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeResponse(t, w)["status"])
}

func TestCreateInvoice(t *testing.T) {
	t.Run("valid draft", func(t *testing.T) {
		router := newTestRouter(t, nil)
		data := createInvoice(t, router)

		assert.NotEmpty(t, data["id"])
		assert.NotEmpty(t, data["invoiceNumber"])
		assert.Equal(t, "draft", data["status"])
		assert.Equal(t, 1062.0, data["total"])
	})

	t.Run("validation failure", func(t *testing.T) {
		router := newTestRouter(t, nil)
		body := validInvoiceBody()
		body["items"] = []map[string]any{}

		w := doJSON(router, http.MethodPost, "/api/invoices", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "please add at least one item", decodeResponse(t, w)["error"])
	})

	t.Run("malformed json", func(t *testing.T) {
		router := newTestRouter(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetInvoice(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createInvoice(t, router)

	w := doJSON(router, http.MethodGet, "/api/invoices/"+created["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/invoices/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateInvoice(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createInvoice(t, router)
	id := created["id"].(string)

	t.Run("patch applies and totals recompute", func(t *testing.T) {
		w := doJSON(router, http.MethodPatch, "/api/invoices/"+id, map[string]any{
			"status":       "paid",
			"taxRate":      0,
			"discountRate": 0,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, "paid", data["status"])
		assert.Equal(t, 1000.0, data["total"])
	})

	t.Run("unknown status", func(t *testing.T) {
		w := doJSON(router, http.MethodPatch, "/api/invoices/"+id, map[string]any{"status": "archived"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(router, http.MethodPatch, "/api/invoices/no-such-id", map[string]any{"notes": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteInvoice(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createInvoice(t, router)
	id := created["id"].(string)

	w := doJSON(router, http.MethodDelete, "/api/invoices/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/invoices/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndRecentInvoices(t *testing.T) {
	router := newTestRouter(t, nil)
	createInvoice(t, router)
	createInvoice(t, router)
	createInvoice(t, router)

	w := doJSON(router, http.MethodGet, "/api/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w)["data"].([]any), 3)

	w = doJSON(router, http.MethodGet, "/api/invoices/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w)["data"].([]any), 2)

	w = doJSON(router, http.MethodGet, "/api/invoices/recent?limit=oops", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, 0.0, data["totalInvoices"])

	created := createInvoice(t, router)
	w = doJSON(router, http.MethodPatch, "/api/invoices/"+created["id"].(string), map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/stats", nil)
	data = decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, 1.0, data["totalInvoices"])
	assert.Equal(t, 1.0, data["paidInvoices"])
	assert.Equal(t, 1062.0, data["totalRevenue"])
}

func TestInvoicePDF(t *testing.T) {
	router := newTestRouter(t, nil)
	created := createInvoice(t, router)

	w := doJSON(router, http.MethodGet, "/api/invoices/"+created["id"].(string)+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = doJSON(router, http.MethodGet, "/api/invoices/no-such-id/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceReport(t *testing.T) {
	router := newTestRouter(t, nil)
	createInvoice(t, router)

	w := doJSON(router, http.MethodGet, "/api/reports/invoices.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoices.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestParsePrompt(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		taxRate := 18.0
		router := newTestRouter(t, &stubParser{result: &port.ParseResult{
			Items:      []port.ParsedItem{{Name: "Logo design", Quantity: 2, Price: 1500}},
			TaxRate:    &taxRate,
			ClientName: "Acme Corp",
		}})

		w := doJSON(router, http.MethodPost, "/api/parse", map[string]any{"prompt": "2 logo designs at 1500 for Acme with 18% tax"})
		require.Equal(t, http.StatusOK, w.Code)

		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, "Acme Corp", data["clientName"])
		assert.Len(t, data["items"].([]any), 1)
	})

	t.Run("empty prompt", func(t *testing.T) {
		router := newTestRouter(t, nil)
		w := doJSON(router, http.MethodPost, "/api/parse", map[string]any{"prompt": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, service.ErrEmptyPrompt.Error(), decodeResponse(t, w)["error"])
	})

	t.Run("failure categories map to statuses", func(t *testing.T) {
		tests := []struct {
			name       string
			category   port.ParseErrorCategory
			wantStatus int
		}{
			{"rate limited", port.ParseErrRateLimited, http.StatusTooManyRequests},
			{"payment required", port.ParseErrPaymentRequired, http.StatusPaymentRequired},
			{"malformed reply", port.ParseErrMalformed, http.StatusBadGateway},
			{"unavailable", port.ParseErrUnavailable, http.StatusServiceUnavailable},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := newTestRouter(t, &stubParser{
					err: port.NewParseError(tt.category, errors.New("upstream failure")),
				})

				w := doJSON(router, http.MethodPost, "/api/parse", map[string]any{"prompt": "anything"})
				assert.Equal(t, tt.wantStatus, w.Code)
				assert.NotEmpty(t, decodeResponse(t, w)["error"])
			})
		}
	})
}

func TestParsePromptErrorMessages(t *testing.T) {
	router := newTestRouter(t, &stubParser{
		err: port.NewParseError(port.ParseErrRateLimited, errors.New("429")),
	})

	w := doJSON(router, http.MethodPost, "/api/parse", map[string]any{"prompt": "anything"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Rate limit exceeded. Please try again in a moment.", decodeResponse(t, w)["error"])
}
