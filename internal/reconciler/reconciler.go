// Package reconciler orchestrates a full reconciliation run: load the
// workbook, aggregate the auxiliary records, apply the rule catalogue,
// enrich the standing orders and write the result workbook.
package reconciler

import (
	"context"

	"bank-reconciliation-engine/internal/events"
	"bank-reconciliation-engine/internal/matcher"
	"bank-reconciliation-engine/internal/models"
	"bank-reconciliation-engine/internal/supplier"
	"bank-reconciliation-engine/internal/workbook"
	apperrors "bank-reconciliation-engine/pkg/errors"
	"bank-reconciliation-engine/pkg/logger"
)

// Request describes one reconciliation run.
type Request struct {
	// WorkbookPath is the bank/books worksheet file, .xlsx or .csv.
	WorkbookPath string

	// SheetName selects the worksheet; empty picks the default data sheet.
	SheetName string

	// AuxPath is the optional auxiliary transfer file. Without it the
	// transfer rule does not run.
	AuxPath string

	// OutputPath is where the result workbook is written; empty skips the
	// write and leaves the result in memory only.
	OutputPath string

	// Lookup is the supplier lookup table for the standing-order
	// enrichment; nil leaves every row unresolved.
	Lookup *supplier.Table

	// Matching overrides the rule constants; nil uses the defaults.
	Matching *matcher.Config
}

// Result is the outcome of one run.
type Result struct {
	// Match is the rule engine's report for the sheet.
	Match *matcher.Result

	// Table is the reconciled table with match codes written back.
	Table *models.Table

	// Enrichment holds the supplier report rows, summary row included.
	Enrichment []supplier.Row

	// Unresolved counts enrichment rows with no supplier account.
	Unresolved int

	// AuxGroups is the number of aggregated transfer event groups.
	AuxGroups int

	// OutputPath echoes the written workbook path, empty when skipped.
	OutputPath string
}

// Service runs reconciliations. Safe for sequential reuse.
type Service struct {
	reader *workbook.Reader
	writer *workbook.Writer
	log    logger.Logger
}

// NewService creates a reconciliation service.
func NewService() *Service {
	return &Service{
		reader: workbook.NewReader(),
		writer: workbook.NewWriter(),
		log:    logger.GetGlobalLogger().WithComponent("reconciler"),
	}
}

// Reconcile executes the run described by the request.
func (s *Service) Reconcile(ctx context.Context, req *Request) (*Result, error) {
	if req.WorkbookPath == "" {
		return nil, apperrors.NewValidationError(apperrors.CodeMissingField, "workbook path is required", nil)
	}

	table, err := s.reader.Read(req.WorkbookPath, req.SheetName)
	if err != nil {
		return nil, err
	}

	engine, err := matcher.NewEngine(req.Matching)
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.CodeInvalidConfig, "invalid matching configuration", err)
	}

	auxGroups := 0
	if req.AuxPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		aux, err := s.reader.Read(req.AuxPath, "")
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load auxiliary file")
		}

		if idx, ok := events.Build(aux); ok {
			engine.SetEvents(idx)
			auxGroups = idx.Len()
		} else {
			s.log.WithField("path", req.AuxPath).
				Warn("Auxiliary file has no usable date or amount column, transfer matching skipped")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheet := matcher.LoadSheet(table)
	match := engine.Run(sheet)

	enrichment := s.enrich(sheet, match, req.Lookup)

	result := &Result{
		Match:      match,
		Table:      table,
		Enrichment: enrichment,
		AuxGroups:  auxGroups,
	}
	for _, row := range enrichment {
		if !row.Resolved {
			result.Unresolved++
		}
	}

	if req.OutputPath != "" {
		out := &workbook.Output{
			Data:       table,
			Summary:    summaryLines(match),
			Enrichment: enrichment,
		}
		if err := s.writer.Write(req.OutputPath, out); err != nil {
			return nil, err
		}
		result.OutputPath = req.OutputPath
	}

	return result, nil
}

// enrich captures the standing-order rows and resolves them against the
// lookup table.
func (s *Service) enrich(sheet *matcher.Sheet, match *matcher.Result, lookup *supplier.Table) []supplier.Row {
	if len(match.StandingOrderRows) == 0 {
		return nil
	}

	captured := make([]supplier.CapturedRow, 0, len(match.StandingOrderRows))
	for _, i := range match.StandingOrderRows {
		amount, ok := sheet.BankAmount(i)
		captured = append(captured, supplier.CapturedRow{
			Details:  sheet.Details(i),
			Amount:   amount,
			AmountOK: ok,
		})
	}

	return supplier.Enrich(supplier.NewResolver(lookup), captured)
}

// summaryLines orders the code counts for the summary sheet: unclassified
// first, then the catalogue codes in rule order.
func summaryLines(match *matcher.Result) []workbook.SummaryLine {
	labels := map[int]string{matcher.CodeNone: "unclassified"}
	for _, report := range match.Rules {
		labels[report.Code] = report.Rule
	}

	var lines []workbook.SummaryLine
	for code := matcher.CodeNone; code <= matcher.CodeReserved12; code++ {
		count := match.CodeCounts[code]
		if count == 0 && code != matcher.CodeNone {
			continue
		}
		lines = append(lines, workbook.SummaryLine{
			Code:  code,
			Label: labels[code],
			Rows:  count,
		})
	}
	return lines
}
