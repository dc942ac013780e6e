package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bank-reconciliation-engine/internal/models"
	"bank-reconciliation-engine/internal/supplier"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "data.csv", "מס.התאמה,סכום בדף\n0,100\n0,\n")

	table, err := NewReader().Read(path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"מס.התאמה", "סכום בדף"}, table.Headers)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "100", table.Records[0].Get("סכום בדף"))
	assert.Equal(t, "", table.Records[1].Get("סכום בדף"), "short rows are padded")
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewReader().Read(filepath.Join(t.TempDir(), "nope.csv"), "")
	assert.Error(t, err)
}

func TestReadUnsupportedFormat(t *testing.T) {
	path := writeCSV(t, "data.txt", "whatever")
	_, err := NewReader().Read(path, "")
	assert.Error(t, err)
}

func TestReadEmptyCSV(t *testing.T) {
	path := writeCSV(t, "empty.csv", "")
	_, err := NewReader().Read(path, "")
	assert.Error(t, err)
}

func TestWriteAndReadWorkbook(t *testing.T) {
	table := models.NewTable(DataSheetName, []string{"מס.התאמה", "פרטים"})
	table.Append([]string{"2", "הוראת קבע"})
	table.Append([]string{"0", "אחר"})

	out := &Output{
		Data: table,
		Summary: []SummaryLine{
			{Code: 0, Label: "unclassified", Rows: 1},
			{Code: 2, Label: "standing_orders", Rows: 1},
		},
		Enrichment: []supplier.Row{
			{Details: "הוראת קבע", Amount: decimal.NewFromInt(-100), SupplierID: "30045", Debit: decimal.NewFromInt(100), Resolved: true},
			{Details: "הפקדה", Amount: decimal.NewFromInt(75), SupplierID: "30046", Credit: decimal.NewFromInt(75), Resolved: true},
			{Details: "לא מוכר", Amount: decimal.NewFromInt(-50), Debit: decimal.NewFromInt(50)},
			{Credit: decimal.NewFromInt(100), Resolved: true, Summary: true},
		},
	}

	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, NewWriter().Write(path, out))

	// The data sheet round-trips through the reader.
	got, err := NewReader().Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, DataSheetName, got.Sheet)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "2", got.Records[0].Get("מס.התאמה"))

	// All three sheets exist.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{DataSheetName, SummarySheetName, SupplierSheetName}, f.GetSheetList())

	// The supplier sheet carries the rows plus the balancing credit,
	// amounts split by sign into the debit and credit columns.
	rows, err := f.GetRows(SupplierSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5, "header, three supplier rows, summary row")
	assert.Equal(t, []string{"פרטים", "סכום", "חשבון ספק", "חובה", "זכות"}, rows[0])
	assert.Equal(t, "-100", rows[1][1])
	assert.Equal(t, "30045", rows[1][2])
	assert.Equal(t, "100", rows[1][3], "negative amount posts in the debit column")
	assert.Equal(t, "75", rows[2][4], "positive amount posts in the credit column")
	require.Len(t, rows[4], 5)
	assert.Equal(t, "100", rows[4][4], "summary credit balances the debits")
}

func TestWriteSkipsEmptyEnrichment(t *testing.T) {
	table := models.NewTable(DataSheetName, []string{"מס.התאמה"})
	table.Append([]string{"0"})

	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, NewWriter().Write(path, &Output{
		Data:    table,
		Summary: []SummaryLine{{Code: 0, Label: "unclassified", Rows: 1}},
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.NotContains(t, f.GetSheetList(), SupplierSheetName)
}

func TestSelectSheetPrefersDataSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet(DataSheetName)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(DataSheetName, "A1", "מס.התאמה"))
	require.NoError(t, f.SetCellValue(DataSheetName, "A2", "0"))
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "other"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewReader().Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, DataSheetName, table.Sheet)

	// An explicit sheet name that does not exist is an error.
	_, err = NewReader().Read(path, "DoesNotExist")
	assert.Error(t, err)
}
