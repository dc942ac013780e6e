// Package workbook reads worksheet files into tables and writes the
// reconciled output workbook with its summary and supplier sheets.
package workbook

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bank-reconciliation-engine/internal/models"
	apperrors "bank-reconciliation-engine/pkg/errors"
	"bank-reconciliation-engine/pkg/logger"
)

// DataSheetName is the worksheet the engine reads and writes by default.
const DataSheetName = "DataSheet"

// Reader loads .xlsx and .csv files into tables. The first row of the
// selected sheet is the header row; everything below is data.
type Reader struct {
	log logger.Logger
}

// NewReader creates a reader.
func NewReader() *Reader {
	return &Reader{log: logger.GetGlobalLogger().WithComponent("workbook")}
}

// Read loads the file into a table. For workbooks, sheet selects the
// worksheet; when empty, the default data sheet is used if present and the
// first sheet otherwise. CSV files ignore the sheet argument.
func (r *Reader) Read(path, sheet string) (*models.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewFileError(apperrors.CodeFileNotFound, "input file not found", err).
			WithContext("path", path).
			WithSuggestion("Check that the file path is correct and the file exists")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return r.readCSV(path)
	case ".xlsx", ".xlsm":
		return r.readWorkbook(path, sheet)
	default:
		return nil, apperrors.NewParseError(apperrors.CodeInvalidFormat, "unsupported file format", nil).
			WithContext("path", path).
			WithSuggestion("Supported formats are .xlsx, .xlsm and .csv")
	}
}

func (r *Reader) readCSV(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewFileError(apperrors.CodeFilePermission, "failed to open CSV file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParseError(apperrors.CodeInvalidFormat, "failed to parse CSV file", err).
			WithContext("path", path)
	}

	return r.buildTable(filepath.Base(path), path, rows)
}

func (r *Reader) readWorkbook(path, sheet string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParseError(apperrors.CodeFileCorrupted, "failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	requested := sheet
	sheet = r.selectSheet(f, sheet)
	if sheet == "" {
		if requested != "" {
			return nil, apperrors.NewParseError(apperrors.CodeEmptySheet, "worksheet not found", nil).
				WithContext("path", path).
				WithContext("sheet", requested).
				WithSuggestion("Check the sheet name against the workbook's sheet list")
		}
		return nil, apperrors.NewParseError(apperrors.CodeEmptySheet, "workbook has no worksheets", nil).
			WithContext("path", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParseError(apperrors.CodeInvalidFormat, "failed to read worksheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	return r.buildTable(sheet, path, rows)
}

// selectSheet picks the worksheet to read: the requested name, then the
// default data sheet, then the first sheet in the workbook.
func (r *Reader) selectSheet(f *excelize.File, requested string) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}

	if requested != "" {
		for _, s := range sheets {
			if s == requested {
				return s
			}
		}
		return ""
	}

	for _, s := range sheets {
		if s == DataSheetName {
			return s
		}
	}
	return sheets[0]
}

func (r *Reader) buildTable(sheet, path string, rows [][]string) (*models.Table, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewParseError(apperrors.CodeEmptySheet, "worksheet is empty", nil).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := models.NewTable(sheet, headers)
	if err := table.Validate(); err != nil {
		return nil, apperrors.NewParseError(apperrors.CodeInvalidFormat, "invalid header row", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	for _, row := range rows[1:] {
		table.Append(row)
	}

	r.log.WithFields(logger.Fields{
		"path":    path,
		"sheet":   sheet,
		"rows":    table.Len(),
		"columns": len(headers),
	}).Debug("Loaded table")

	return table, nil
}
