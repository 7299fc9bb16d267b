package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/domain/entity"
	"github.com/smartinvoice/smartinvoice/pkg/utils"
)

const reportSheet = "Invoices"

var reportHeaders = []string{
	"Invoice #", "Client", "Date", "Due Date", "Status",
	"Subtotal", "Discount", "Tax", "Total",
}

// ExcelReport builds a one-row-per-invoice workbook over the collection.
type ExcelReport struct {
	logger *zap.Logger
}

// NewExcelReport creates the report builder.
func NewExcelReport(logger *zap.Logger) *ExcelReport {
	return &ExcelReport{logger: logger}
}

// Build renders the collection into an .xlsx workbook and returns its bytes.
func (e *ExcelReport) Build(invoices []*entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EEEEEE"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, cell, header)
	}
	if err := f.SetRowStyle(reportSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	for i, inv := range invoices {
		row := i + 2
		values := []interface{}{
			inv.InvoiceNumber,
			utils.SanitizeString(inv.Client.Name),
			inv.Date.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.Status,
			inv.Subtotal,
			inv.DiscountAmount,
			inv.TaxAmount,
			inv.Total,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			e.setCell(f, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		e.logger.Error("Failed to write invoice report", zap.Error(err))
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Invoice report built", zap.Int("invoices", len(invoices)))
	return buf.Bytes(), nil
}

func (e *ExcelReport) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(reportSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell", zap.String("cell", cell), zap.Error(err))
	}
}
