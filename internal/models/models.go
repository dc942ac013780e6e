// Package models defines the record types shared by the reconciliation
// engine components.
//
// A worksheet is represented as an ordered collection of records keyed by
// the literal header text of each column. Column meaning is resolved later
// by the fields package; nothing here assumes a particular header spelling.
package models

import (
	"fmt"
	"strings"
)

// Record is one worksheet row. Cell values are kept as raw strings; typed
// interpretation (amounts, dates, references) happens in the normalize
// package so that unparsable cells degrade per row instead of failing the
// whole sheet.
type Record struct {
	// Row is the 1-based data row number, header row excluded.
	Row   int
	Cells map[string]string
}

// NewRecord creates a record for the given data row.
func NewRecord(row int, cells map[string]string) *Record {
	if cells == nil {
		cells = make(map[string]string)
	}
	return &Record{Row: row, Cells: cells}
}

// Get returns the raw cell value for a column, or "" when absent.
func (r *Record) Get(column string) string {
	return r.Cells[column]
}

// Set overwrites the raw cell value for a column.
func (r *Record) Set(column, value string) {
	r.Cells[column] = value
}

// String returns a compact representation for logging.
func (r *Record) String() string {
	return fmt.Sprintf("Record{Row: %d, Cells: %d}", r.Row, len(r.Cells))
}

// Table is an ordered record collection together with its header row.
type Table struct {
	// Sheet is the worksheet or file name the table was read from.
	Sheet   string
	Headers []string
	Records []*Record
}

// NewTable creates an empty table with the given headers.
func NewTable(sheet string, headers []string) *Table {
	return &Table{Sheet: sheet, Headers: headers}
}

// Append adds a row of raw values in header order. Short rows are padded
// with empty cells; extra values beyond the header are dropped, matching
// spreadsheet-reader behavior.
func (t *Table) Append(values []string) *Record {
	cells := make(map[string]string, len(t.Headers))
	for i, h := range t.Headers {
		if i < len(values) {
			cells[h] = values[i]
		} else {
			cells[h] = ""
		}
	}
	rec := NewRecord(len(t.Records)+1, cells)
	t.Records = append(t.Records, rec)
	return rec
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Records)
}

// HasHeader reports whether the table contains the exact header.
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Validate checks the table for structural problems.
func (t *Table) Validate() error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("table %q has no header row", t.Sheet)
	}

	seen := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		trimmed := strings.TrimSpace(h)
		if trimmed != "" && seen[trimmed] {
			return fmt.Errorf("table %q has duplicate header %q", t.Sheet, trimmed)
		}
		seen[trimmed] = true
	}

	return nil
}
