package workbook

import (
	"github.com/xuri/excelize/v2"

	"bank-reconciliation-engine/internal/models"
	"bank-reconciliation-engine/internal/supplier"
	apperrors "bank-reconciliation-engine/pkg/errors"
	"bank-reconciliation-engine/pkg/logger"
)

// Output workbook sheet names. The summary and supplier sheets carry the
// Hebrew names the accounting side expects.
const (
	SummarySheetName  = "סיכום"
	SupplierSheetName = "הוראת קבע ספקים"
)

// unresolvedFill highlights supplier rows that resolved to no account.
const unresolvedFill = "FFF2CC"

// SummaryLine is one row of the summary sheet.
type SummaryLine struct {
	Code  int
	Label string
	Rows  int
}

// Output is everything the writer puts into the result workbook.
type Output struct {
	// Data is the reconciled table, match codes written back.
	Data *models.Table

	// Summary tallies rows per match code, catalogue order.
	Summary []SummaryLine

	// Enrichment holds the supplier report rows; nil skips the sheet.
	Enrichment []supplier.Row
}

// Writer produces the result workbook. Every sheet is right-to-left and
// laid out for A4 landscape printing.
type Writer struct {
	log logger.Logger
}

// NewWriter creates a writer.
func NewWriter() *Writer {
	return &Writer{log: logger.GetGlobalLogger().WithComponent("workbook")}
}

// Write saves the output workbook at path.
func (w *Writer) Write(path string, out *Output) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheetName); err != nil {
		return apperrors.NewInternalError("failed to prepare workbook", err)
	}

	if err := w.writeData(f, out.Data); err != nil {
		return err
	}
	if err := w.writeSummary(f, out.Summary); err != nil {
		return err
	}
	if len(out.Enrichment) > 0 {
		if err := w.writeSuppliers(f, out.Enrichment); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewFileError(apperrors.CodeFilePermission, "failed to save output workbook", err).
			WithContext("path", path)
	}

	w.log.WithFields(logger.Fields{
		"path":       path,
		"rows":       out.Data.Len(),
		"enrichment": len(out.Enrichment),
	}).Info("Output workbook written")

	return nil
}

func (w *Writer) writeData(f *excelize.File, table *models.Table) error {
	for c, h := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return apperrors.NewInternalError("failed to address data cell", err)
		}
		if err := f.SetCellValue(DataSheetName, cell, h); err != nil {
			return apperrors.NewInternalError("failed to write data header", err)
		}
	}

	for r, rec := range table.Records {
		for c, h := range table.Headers {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return apperrors.NewInternalError("failed to address data cell", err)
			}
			if err := f.SetCellValue(DataSheetName, cell, rec.Get(h)); err != nil {
				return apperrors.NewInternalError("failed to write data cell", err)
			}
		}
	}

	if err := w.styleHeader(f, DataSheetName, len(table.Headers)); err != nil {
		return err
	}
	return w.layoutSheet(f, DataSheetName)
}

func (w *Writer) writeSummary(f *excelize.File, lines []SummaryLine) error {
	if _, err := f.NewSheet(SummarySheetName); err != nil {
		return apperrors.NewInternalError("failed to create summary sheet", err)
	}

	headers := []string{"קוד התאמה", "תיאור", "מספר שורות"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(SummarySheetName, cell, h); err != nil {
			return apperrors.NewInternalError("failed to write summary header", err)
		}
	}

	total := 0
	for r, line := range lines {
		row := r + 2
		cells := []interface{}{line.Code, line.Label, line.Rows}
		for c, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(SummarySheetName, cell, v); err != nil {
				return apperrors.NewInternalError("failed to write summary row", err)
			}
		}
		total += line.Rows
	}

	totalRow := len(lines) + 2
	totalLabel, _ := excelize.CoordinatesToCellName(2, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(3, totalRow)
	if err := f.SetCellValue(SummarySheetName, totalLabel, "סה\"כ"); err != nil {
		return apperrors.NewInternalError("failed to write summary total", err)
	}
	if err := f.SetCellValue(SummarySheetName, totalCell, total); err != nil {
		return apperrors.NewInternalError("failed to write summary total", err)
	}

	if err := w.boldRow(f, SummarySheetName, totalRow, len(headers)); err != nil {
		return err
	}
	if err := w.styleHeader(f, SummarySheetName, len(headers)); err != nil {
		return err
	}
	return w.layoutSheet(f, SummarySheetName)
}

func (w *Writer) writeSuppliers(f *excelize.File, rows []supplier.Row) error {
	if _, err := f.NewSheet(SupplierSheetName); err != nil {
		return apperrors.NewInternalError("failed to create supplier sheet", err)
	}

	headers := []string{"פרטים", "סכום", "חשבון ספק", "חובה", "זכות"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(SupplierSheetName, cell, h); err != nil {
			return apperrors.NewInternalError("failed to write supplier header", err)
		}
	}

	fillStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{unresolvedFill}, Pattern: 1},
	})
	if err != nil {
		return apperrors.NewInternalError("failed to create highlight style", err)
	}

	for r, row := range rows {
		excelRow := r + 2
		cells := []interface{}{row.Details, nil, row.SupplierID, nil, nil}
		if !row.Summary {
			cells[1] = row.Amount.InexactFloat64()
		}
		if !row.Debit.IsZero() {
			cells[3] = row.Debit.InexactFloat64()
		}
		if !row.Credit.IsZero() || row.Summary {
			cells[4] = row.Credit.InexactFloat64()
		}

		for c, v := range cells {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, excelRow)
			if err := f.SetCellValue(SupplierSheetName, cell, v); err != nil {
				return apperrors.NewInternalError("failed to write supplier row", err)
			}
		}

		if !row.Resolved {
			first, _ := excelize.CoordinatesToCellName(1, excelRow)
			last, _ := excelize.CoordinatesToCellName(len(headers), excelRow)
			if err := f.SetCellStyle(SupplierSheetName, first, last, fillStyle); err != nil {
				return apperrors.NewInternalError("failed to highlight supplier row", err)
			}
		}

		if row.Summary {
			if err := w.boldRow(f, SupplierSheetName, excelRow, len(headers)); err != nil {
				return err
			}
		}
	}

	if err := w.styleHeader(f, SupplierSheetName, len(headers)); err != nil {
		return err
	}
	return w.layoutSheet(f, SupplierSheetName)
}

// styleHeader bolds the header row.
func (w *Writer) styleHeader(f *excelize.File, sheet string, columns int) error {
	if columns == 0 {
		return nil
	}
	return w.boldRow(f, sheet, 1, columns)
}

func (w *Writer) boldRow(f *excelize.File, sheet string, row, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewInternalError("failed to create bold style", err)
	}

	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(columns, row)
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return apperrors.NewInternalError("failed to style row", err)
	}
	return nil
}

// layoutSheet applies the right-to-left view and the A4 landscape print
// setup to a sheet.
func (w *Writer) layoutSheet(f *excelize.File, sheet string) error {
	rtl := true
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return apperrors.NewInternalError("failed to set sheet view", err)
	}

	orientation := "landscape"
	a4 := 9
	fitToWidth := 1
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Orientation: &orientation,
		Size:        &a4,
		FitToWidth:  &fitToWidth,
	}); err != nil {
		return apperrors.NewInternalError("failed to set page layout", err)
	}

	margin := 0.25
	header := 0.1
	if err := f.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
		Left:   &margin,
		Right:  &margin,
		Top:    &margin,
		Bottom: &margin,
		Header: &header,
		Footer: &header,
	}); err != nil {
		return apperrors.NewInternalError("failed to set page margins", err)
	}
	return nil
}
