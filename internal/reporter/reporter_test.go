package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"bank-reconciliation-engine/internal/matcher"
	"bank-reconciliation-engine/internal/models"
	"bank-reconciliation-engine/internal/reconciler"
)

func testResult() *reconciler.Result {
	table := models.NewTable("DataSheet", []string{"מס.התאמה"})
	table.Append([]string{"1"})
	table.Append([]string{"1"})
	table.Append([]string{"0"})

	return &reconciler.Result{
		Match: &matcher.Result{
			Sheet:       "DataSheet",
			MatchColumn: "מס.התאמה",
			CodeCounts:  map[int]int{0: 1, 1: 2},
			Rules: []matcher.RuleReport{
				{Rule: "ovrc_receipts", Code: 1, Applied: true, Tagged: 2, Pairs: 1},
				{Rule: "transfers", Code: 3, Reason: "no auxiliary records"},
			},
		},
		Table:     table,
		AuxGroups: 0,
	}
}

func TestNewReportGenerator(t *testing.T) {
	if _, err := NewReportGenerator(nil); err != nil {
		t.Fatalf("expected nil config to use defaults, got %v", err)
	}

	if _, err := NewReportGenerator(&ReportConfig{Format: "xml"}); err == nil {
		t.Fatal("expected invalid format to be rejected")
	}
}

func TestConsoleReport(t *testing.T) {
	g, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := g.GenerateReport(testResult(), &buf); err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Reconciliation Report",
		"ovrc_receipts",
		"unclassified",
		"skipped (no auxiliary records)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q", want)
		}
	}
}

func TestJSONReport(t *testing.T) {
	g, err := NewReportGenerator(&ReportConfig{Format: FormatJSON, IncludeRules: true})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := g.GenerateReport(testResult(), &buf); err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	var report struct {
		Sheet      string         `json:"sheet"`
		Rows       int            `json:"rows"`
		Explained  int            `json:"explained"`
		CodeCounts map[string]int `json:"code_counts"`
		Rules      []struct {
			Rule string `json:"rule"`
		} `json:"rules"`
	}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if report.Sheet != "DataSheet" || report.Rows != 3 || report.Explained != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.CodeCounts["1"] != 2 {
		t.Errorf("code counts = %v", report.CodeCounts)
	}
	if len(report.Rules) != 2 {
		t.Errorf("rules = %d, want 2", len(report.Rules))
	}
}

func TestCSVReport(t *testing.T) {
	g, err := NewReportGenerator(&ReportConfig{Format: FormatCSV})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := g.GenerateReport(testResult(), &buf); err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("records = %d, want header plus two codes", len(records))
	}
	if records[0][0] != "code" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][1] != "ovrc_receipts" || records[2][2] != "2" {
		t.Errorf("receipt row = %v", records[2])
	}
}
