// Package export renders invoices into downloadable documents: a formatted
// PDF with a payment QR for a single invoice, and an Excel report over the
// whole collection.
package export

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/domain/entity"
	"github.com/smartinvoice/smartinvoice/pkg/utils"
)

// PDFConfig holds the issuer-side fields printed on every invoice.
type PDFConfig struct {
	CompanyName string
	PayeeName   string
	// PayeeVPA is the UPI virtual payment address encoded into the QR.
	// When empty the QR block is skipped.
	PayeeVPA string
	Currency string
}

// PDFRenderer renders one invoice as an A4 PDF.
type PDFRenderer struct {
	cfg    PDFConfig
	logger *zap.Logger
}

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer(cfg PDFConfig, logger *zap.Logger) *PDFRenderer {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &PDFRenderer{cfg: cfg, logger: logger}
}

// Render produces the PDF bytes for one invoice.
func (r *PDFRenderer) Render(inv *entity.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	r.renderHeader(pdf, inv)
	r.renderBillTo(pdf, inv)
	r.renderItems(pdf, inv)
	r.renderTotals(pdf, inv)
	r.renderNotes(pdf, inv)
	if err := r.renderPaymentQR(pdf, inv); err != nil {
		// The invoice is still usable without the QR; log and continue.
		r.logger.Warn("Failed to render payment QR",
			zap.String("invoice", inv.InvoiceNumber),
			zap.Error(err))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("Failed to render invoice PDF",
			zap.String("invoice", inv.InvoiceNumber),
			zap.Error(err))
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	r.logger.Info("Invoice PDF rendered",
		zap.String("invoice", inv.InvoiceNumber),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (r *PDFRenderer) renderHeader(pdf *gofpdf.Fpdf, inv *entity.Invoice) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(95, 10, utils.SanitizeString(r.cfg.CompanyName))
	pdf.CellFormat(85, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(95, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, inv.InvoiceNumber, "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, "Date: "+inv.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, "Due: "+inv.DueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(85, 6, "Status: "+inv.Status, "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

func (r *PDFRenderer) renderBillTo(pdf *gofpdf.Fpdf, inv *entity.Invoice) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, utils.SanitizeString(inv.Client.Name), "", 1, "L", false, 0, "")
	for _, line := range []string{inv.Client.Address, inv.Client.Email, inv.Client.Phone} {
		if line != "" {
			pdf.CellFormat(0, 5, utils.SanitizeString(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)
}

func (r *PDFRenderer) renderItems(pdf *gofpdf.Fpdf, inv *entity.Invoice) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i, item := range inv.Items {
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 7, utils.SanitizeString(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, trimNumber(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, r.amount(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, r.amount(item.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *PDFRenderer) renderTotals(pdf *gofpdf.Fpdf, inv *entity.Invoice) {
	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, value, "", 1, "R", false, 0, "")
	}

	row("Subtotal", r.amount(inv.Subtotal), false)
	if inv.DiscountRate != 0 {
		row(fmt.Sprintf("Discount (%s%%)", trimNumber(inv.DiscountRate)), "-"+r.amount(inv.DiscountAmount), false)
	}
	if inv.TaxRate != 0 {
		row(fmt.Sprintf("Tax (%s%%)", trimNumber(inv.TaxRate)), r.amount(inv.TaxAmount), false)
	}
	row("Total", r.amount(inv.Total), true)
	pdf.Ln(4)
}

func (r *PDFRenderer) renderNotes(pdf *gofpdf.Fpdf, inv *entity.Invoice) {
	if inv.Notes == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(120, 5, utils.SanitizeString(inv.Notes), "", "L", false)
	pdf.Ln(2)
}

// renderPaymentQR embeds a UPI payment QR for the invoice total in the lower
// right corner.
func (r *PDFRenderer) renderPaymentQR(pdf *gofpdf.Fpdf, inv *entity.Invoice) error {
	if r.cfg.PayeeVPA == "" {
		return nil
	}

	payload := fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%.2f&cu=%s&tn=%s",
		url.QueryEscape(r.cfg.PayeeVPA),
		url.QueryEscape(r.cfg.PayeeName),
		inv.Total,
		url.QueryEscape(r.cfg.Currency),
		url.QueryEscape(inv.InvoiceNumber),
	)

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to encode QR: %w", err)
	}

	name := "qr-" + inv.ID
	pdf.RegisterImageOptionsReader(name,
		gofpdf.ImageOptions{ImageType: "PNG"},
		bytes.NewReader(png))

	x := 160.0
	y := pdf.GetY()
	pdf.ImageOptions(name, x, y, 35, 35, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetXY(x, y+36)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(35, 4, "Scan to pay", "", 1, "C", false, 0, "")
	return nil
}

func (r *PDFRenderer) amount(v float64) string {
	return fmt.Sprintf("%s %.2f", r.cfg.Currency, v)
}

// trimNumber formats a float without trailing zeros, so a quantity reads as
// "2" rather than "2.000000".
func trimNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
