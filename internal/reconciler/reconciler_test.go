package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bank-reconciliation-engine/internal/matcher"
	"bank-reconciliation-engine/internal/supplier"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const statementCSV = `מס.התאמה,קוד פעולת בנק,סכום בדף,סכום בספרים,אסמכתא 1,אסמכתא 2,תאריך ערך,פרטים
0,120,-500,,,,15/03/2024,
0,,,500,OV1234,,15/03/2024,
0,469,1200,,,,,חברת החשמל
0,485,150.25,,,,15/03/2024,העב' במקבץ-נט
0,,,-150.25,P1,,,
0,100,7,,,,,
`

const auxCSV = `תאריך פריקה,אחרי ניכוי,מס' תשלום
15/03/2024,100.00,P1
15/03/2024,50.25,P2
`

func TestReconcileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	workbook := writeFile(t, dir, "statement.csv", statementCSV)
	aux := writeFile(t, dir, "transfers.csv", auxCSV)
	output := filepath.Join(dir, "result.xlsx")

	lookup := supplier.NewTable()
	lookup.NameMap["חברת החשמל"] = "30045"

	result, err := NewService().Reconcile(context.Background(), &Request{
		WorkbookPath: workbook,
		AuxPath:      aux,
		OutputPath:   output,
		Lookup:       lookup,
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if result.Match.CodeCounts[matcher.CodeOVRC] != 2 {
		t.Errorf("receipts = %d, want 2", result.Match.CodeCounts[matcher.CodeOVRC])
	}
	if result.Match.CodeCounts[matcher.CodeStanding] != 1 {
		t.Errorf("standing orders = %d, want 1", result.Match.CodeCounts[matcher.CodeStanding])
	}
	if result.Match.CodeCounts[matcher.CodeTransfer] != 2 {
		t.Errorf("transfers = %d, want 2", result.Match.CodeCounts[matcher.CodeTransfer])
	}
	if result.Match.CodeCounts[matcher.CodeNone] != 1 {
		t.Errorf("unclassified = %d, want 1", result.Match.CodeCounts[matcher.CodeNone])
	}

	if result.AuxGroups != 1 {
		t.Errorf("aux groups = %d, want 1", result.AuxGroups)
	}

	// One standing order, resolved, plus the summary row.
	if len(result.Enrichment) != 2 {
		t.Fatalf("enrichment rows = %d, want 2", len(result.Enrichment))
	}
	if result.Enrichment[0].SupplierID != "30045" {
		t.Errorf("supplier = %q, want 30045", result.Enrichment[0].SupplierID)
	}
	if got := result.Enrichment[0].Credit.StringFixed(2); got != "1200.00" {
		t.Errorf("credit = %s, want 1200.00 for a positive standing order", got)
	}
	if result.Unresolved != 0 {
		t.Errorf("unresolved = %d, want 0", result.Unresolved)
	}

	if _, err := os.Stat(output); err != nil {
		t.Errorf("expected output workbook to be written: %v", err)
	}
	if result.OutputPath != output {
		t.Errorf("output path = %q, want %q", result.OutputPath, output)
	}

	// Codes were written back into the table.
	if got := result.Table.Records[2].Get("מס.התאמה"); got != "2" {
		t.Errorf("written code = %q, want \"2\"", got)
	}
}

func TestReconcileWithoutAuxOrLookup(t *testing.T) {
	dir := t.TempDir()
	workbook := writeFile(t, dir, "statement.csv", statementCSV)

	result, err := NewService().Reconcile(context.Background(), &Request{
		WorkbookPath: workbook,
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	// Without the auxiliary file the transfer rows stay unclassified.
	if result.Match.CodeCounts[matcher.CodeTransfer] != 0 {
		t.Errorf("transfers = %d, want 0", result.Match.CodeCounts[matcher.CodeTransfer])
	}

	// Without a lookup table the standing order is captured but unresolved.
	if len(result.Enrichment) != 2 {
		t.Fatalf("enrichment rows = %d, want 2", len(result.Enrichment))
	}
	if result.Unresolved != 1 {
		t.Errorf("unresolved = %d, want 1", result.Unresolved)
	}
}

func TestReconcileUnusableAuxFile(t *testing.T) {
	dir := t.TempDir()
	workbook := writeFile(t, dir, "statement.csv", statementCSV)
	aux := writeFile(t, dir, "aux.csv", "שם,הערות\nא,ב\n")

	result, err := NewService().Reconcile(context.Background(), &Request{
		WorkbookPath: workbook,
		AuxPath:      aux,
	})
	if err != nil {
		t.Fatalf("expected unusable auxiliary file to degrade, got %v", err)
	}
	if result.AuxGroups != 0 {
		t.Errorf("aux groups = %d, want 0", result.AuxGroups)
	}
}

func TestReconcileMissingWorkbook(t *testing.T) {
	_, err := NewService().Reconcile(context.Background(), &Request{})
	if err == nil {
		t.Fatal("expected an error without a workbook path")
	}

	_, err = NewService().Reconcile(context.Background(), &Request{
		WorkbookPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing workbook file")
	}
}
