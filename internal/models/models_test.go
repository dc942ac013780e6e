package models

import "testing"

func TestTableAppendPadsShortRows(t *testing.T) {
	table := NewTable("DataSheet", []string{"a", "b", "c"})

	rec := table.Append([]string{"1", "2"})
	if rec.Get("c") != "" {
		t.Errorf("short row cell = %q, want empty", rec.Get("c"))
	}

	rec = table.Append([]string{"1", "2", "3", "dropped"})
	if rec.Get("c") != "3" {
		t.Errorf("cell = %q, want 3", rec.Get("c"))
	}

	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2", table.Len())
	}
	if table.Records[1].Row != 2 {
		t.Errorf("row number = %d, want 2", table.Records[1].Row)
	}
}

func TestRecordGetSet(t *testing.T) {
	rec := NewRecord(1, nil)

	if rec.Get("missing") != "" {
		t.Error("missing column should read as empty")
	}

	rec.Set("a", "x")
	if rec.Get("a") != "x" {
		t.Errorf("Get = %q, want x", rec.Get("a"))
	}
}

func TestTableValidate(t *testing.T) {
	if err := NewTable("s", nil).Validate(); err == nil {
		t.Error("expected empty header row to be rejected")
	}

	if err := NewTable("s", []string{"a", "b", "a"}).Validate(); err == nil {
		t.Error("expected duplicate headers to be rejected")
	}

	// Blank headers may repeat; spreadsheet exports produce them.
	if err := NewTable("s", []string{"a", "", ""}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestHasHeader(t *testing.T) {
	table := NewTable("s", []string{"מס.התאמה", "פרטים"})
	if !table.HasHeader("פרטים") {
		t.Error("expected header to be found")
	}
	if table.HasHeader("אחר") {
		t.Error("unexpected header")
	}
}
