package matcher

import (
	"strconv"
	"time"

	"bank-reconciliation-engine/internal/fields"
	"bank-reconciliation-engine/internal/models"
	"bank-reconciliation-engine/internal/normalize"

	"github.com/shopspring/decimal"
)

// Sheet is one worksheet prepared for matching: resolved columns plus the
// normalized per-row series the rules read. Only the match-code series is
// mutated; the underlying records stay untouched until WriteBack.
type Sheet struct {
	Name    string
	Columns fields.Columns
	Records []*models.Record

	// matchColumn is the header the codes are written back to. When no
	// match column resolves the first header is used, matching the
	// historical behavior.
	matchColumn string

	match []int

	bankCode   []int
	bankCodeOK []bool

	bankAmt   []decimal.Decimal
	bankAmtOK []bool

	booksAmt   []decimal.Decimal
	booksAmtOK []bool

	date   []time.Time
	dateOK []bool

	ref1    []string
	ref2    []string
	details []string
}

// LoadSheet resolves the table's columns through the default synonym
// table and normalizes every series the rules need. Unresolved columns
// leave their series absent; the affected rules report themselves not
// applicable instead of failing.
func LoadSheet(table *models.Table) *Sheet {
	cols := fields.ResolveAll(table.Headers, fields.DefaultSynonyms())

	n := table.Len()
	s := &Sheet{
		Name:    table.Sheet,
		Columns: cols,
		Records: table.Records,

		match:      make([]int, n),
		bankCode:   make([]int, n),
		bankCodeOK: make([]bool, n),
		bankAmt:    make([]decimal.Decimal, n),
		bankAmtOK:  make([]bool, n),
		booksAmt:   make([]decimal.Decimal, n),
		booksAmtOK: make([]bool, n),
		date:       make([]time.Time, n),
		dateOK:     make([]bool, n),
		ref1:       make([]string, n),
		ref2:       make([]string, n),
		details:    make([]string, n),
	}

	s.matchColumn = cols.Get(fields.MatchCode)
	if s.matchColumn == "" && len(table.Headers) > 0 {
		s.matchColumn = table.Headers[0]
	}

	codeCol := cols.Get(fields.BankCode)
	bankCol := cols.Get(fields.BankAmount)
	booksCol := cols.Get(fields.BooksAmount)
	dateCol := cols.Get(fields.Date)
	ref1Col := cols.Get(fields.Reference1)
	ref2Col := cols.Get(fields.Reference2)
	detailsCol := cols.Get(fields.Details)

	for i, rec := range table.Records {
		if s.matchColumn != "" {
			if v, ok := normalize.Int(rec.Get(s.matchColumn)); ok {
				s.match[i] = v
			}
		}

		if codeCol != "" {
			s.bankCode[i], s.bankCodeOK[i] = normalize.Int(rec.Get(codeCol))
		}

		if bankCol != "" {
			s.bankAmt[i], s.bankAmtOK[i] = normalize.Number(rec.Get(bankCol))
		}

		if booksCol != "" {
			s.booksAmt[i], s.booksAmtOK[i] = normalize.Number(rec.Get(booksCol))
		}

		if dateCol != "" {
			s.date[i], s.dateOK[i] = normalize.Date(rec.Get(dateCol))
		}

		if ref1Col != "" {
			s.ref1[i] = rec.Get(ref1Col)
		}

		if ref2Col != "" {
			s.ref2[i] = rec.Get(ref2Col)
		}

		if detailsCol != "" {
			s.details[i] = rec.Get(detailsCol)
		}
	}

	return s
}

// Len returns the number of rows.
func (s *Sheet) Len() int {
	return len(s.match)
}

// MatchCode returns the current match code of a row.
func (s *Sheet) MatchCode(i int) int {
	return s.match[i]
}

// BankAmount returns the bank-side amount of a row.
func (s *Sheet) BankAmount(i int) (decimal.Decimal, bool) {
	return s.bankAmt[i], s.bankAmtOK[i]
}

// Details returns the free-text details of a row.
func (s *Sheet) Details(i int) string {
	return s.details[i]
}

// candidate reports whether the row may still be captured by a rule whose
// overwrite set is given.
func (s *Sheet) candidate(i int, overwritable []int) bool {
	return containsInt(overwritable, s.match[i])
}

// assign sets the row's match code when the current code is overwritable
// by the rule. Returns false when the row was already explained.
func (s *Sheet) assign(i, code int, overwritable []int) bool {
	if !s.candidate(i, overwritable) {
		return false
	}
	s.match[i] = code
	return true
}

// RowsWithCode returns the indexes currently carrying the match code, in
// row order.
func (s *Sheet) RowsWithCode(code int) []int {
	var rows []int
	for i, m := range s.match {
		if m == code {
			rows = append(rows, i)
		}
	}
	return rows
}

// CodeCounts tallies rows per match code.
func (s *Sheet) CodeCounts() map[int]int {
	counts := make(map[int]int)
	for _, m := range s.match {
		counts[m]++
	}
	return counts
}

// WriteBack writes the match-code series into the records. Every row is
// written as an integer, coercing blank and unparsable original cells to
// zero the way the source implementation did.
func (s *Sheet) WriteBack() {
	if s.matchColumn == "" {
		return
	}
	for i, rec := range s.Records {
		rec.Set(s.matchColumn, strconv.Itoa(s.match[i]))
	}
}

// MatchColumn returns the header the match codes are written to.
func (s *Sheet) MatchColumn() string {
	return s.matchColumn
}
