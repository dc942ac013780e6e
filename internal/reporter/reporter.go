// Package reporter renders reconciliation run results for the terminal
// and for programmatic consumption.
//
// Supported output formats:
//   - Console: human-readable tabular output
//   - JSON: structured data for downstream tooling
//   - CSV: the summary table alone, for spreadsheets
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"bank-reconciliation-engine/internal/matcher"
	"bank-reconciliation-engine/internal/reconciler"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds report generation options.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeRules adds the per-rule application reports.
	IncludeRules bool `json:"include_rules"`

	// IncludeColumns adds the resolved column mapping.
	IncludeColumns bool `json:"include_columns"`
}

// DefaultReportConfig returns the default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		IncludeRules:   true,
		IncludeColumns: true,
	}
}

// Validate checks the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders run results according to its configuration.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator. A nil config gets the
// defaults.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the run report to the writer in the configured
// format.
func (g *ReportGenerator) GenerateReport(result *reconciler.Result, w io.Writer) error {
	switch g.config.Format {
	case FormatJSON:
		return g.writeJSON(result, w)
	case FormatCSV:
		return g.writeCSV(result, w)
	default:
		return g.writeConsole(result, w)
	}
}

// jsonReport is the JSON report shape.
type jsonReport struct {
	Sheet       string               `json:"sheet"`
	MatchColumn string               `json:"match_column"`
	Columns     map[string]string    `json:"columns,omitempty"`
	Rows        int                  `json:"rows"`
	Explained   int                  `json:"explained"`
	CodeCounts  map[string]int       `json:"code_counts"`
	Rules       []matcher.RuleReport `json:"rules,omitempty"`
	AuxGroups   int                  `json:"aux_groups"`
	Enrichment  int                  `json:"enrichment_rows"`
	Unresolved  int                  `json:"unresolved_suppliers"`
	OutputPath  string               `json:"output_path,omitempty"`
}

func (g *ReportGenerator) writeJSON(result *reconciler.Result, w io.Writer) error {
	report := jsonReport{
		Sheet:       result.Match.Sheet,
		MatchColumn: result.Match.MatchColumn,
		Rows:        result.Table.Len(),
		Explained:   result.Match.Explained(),
		CodeCounts:  make(map[string]int, len(result.Match.CodeCounts)),
		AuxGroups:   result.AuxGroups,
		Enrichment:  len(result.Enrichment),
		Unresolved:  result.Unresolved,
		OutputPath:  result.OutputPath,
	}
	if g.config.IncludeRules {
		report.Rules = result.Match.Rules
	}
	if g.config.IncludeColumns {
		report.Columns = result.Match.Columns
	}
	for code, count := range result.Match.CodeCounts {
		report.CodeCounts[strconv.Itoa(code)] = count
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (g *ReportGenerator) writeCSV(result *reconciler.Result, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"code", "rule", "rows"}); err != nil {
		return err
	}

	labels := ruleLabels(result.Match)
	for _, code := range sortedCodes(result.Match.CodeCounts) {
		record := []string{
			strconv.Itoa(code),
			labels[code],
			strconv.Itoa(result.Match.CodeCounts[code]),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (g *ReportGenerator) writeConsole(result *reconciler.Result, w io.Writer) error {
	var b strings.Builder

	b.WriteString("Reconciliation Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "Sheet:          %s\n", result.Match.Sheet)
	fmt.Fprintf(&b, "Match column:   %s\n", result.Match.MatchColumn)
	fmt.Fprintf(&b, "Rows:           %d\n", result.Table.Len())
	fmt.Fprintf(&b, "Explained:      %d\n", result.Match.Explained())
	if result.AuxGroups > 0 {
		fmt.Fprintf(&b, "Event groups:   %d\n", result.AuxGroups)
	}
	if result.OutputPath != "" {
		fmt.Fprintf(&b, "Output:         %s\n", result.OutputPath)
	}
	b.WriteString("\n")

	b.WriteString("Match Codes\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "%-6s %-24s %s\n", "Code", "Rule", "Rows")
	labels := ruleLabels(result.Match)
	for _, code := range sortedCodes(result.Match.CodeCounts) {
		fmt.Fprintf(&b, "%-6d %-24s %d\n", code, labels[code], result.Match.CodeCounts[code])
	}
	b.WriteString("\n")

	if g.config.IncludeColumns && len(result.Match.Columns) > 0 {
		b.WriteString("Resolved Columns\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		names := make([]string, 0, len(result.Match.Columns))
		for field := range result.Match.Columns {
			names = append(names, field)
		}
		sort.Strings(names)
		for _, field := range names {
			fmt.Fprintf(&b, "%-24s %s\n", field, result.Match.Columns[field])
		}
		b.WriteString("\n")
	}

	if g.config.IncludeRules {
		b.WriteString("Rule Applications\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, report := range result.Match.Rules {
			if !report.Applied {
				fmt.Fprintf(&b, "%-24s skipped (%s)\n", report.Rule, report.Reason)
				continue
			}
			line := fmt.Sprintf("%-24s tagged %d", report.Rule, report.Tagged)
			if report.Pairs > 0 {
				line += fmt.Sprintf(", pairs %d", report.Pairs)
			}
			if report.AmbiguousKeys > 0 {
				line += fmt.Sprintf(", ambiguous keys %d", report.AmbiguousKeys)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(result.Enrichment) > 0 {
		b.WriteString("Supplier Enrichment\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		fmt.Fprintf(&b, "Standing orders: %d\n", len(result.Enrichment)-1)
		fmt.Fprintf(&b, "Unresolved:      %d\n", result.Unresolved)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ruleLabels maps each match code to its rule name.
func ruleLabels(match *matcher.Result) map[int]string {
	labels := map[int]string{matcher.CodeNone: "unclassified"}
	for _, report := range match.Rules {
		labels[report.Code] = report.Rule
	}
	return labels
}

func sortedCodes(counts map[int]int) []int {
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
