// Package supplier resolves standing-order bank rows to supplier account
// ids and builds the enrichment rows of the supplier report sheet.
package supplier

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bank-reconciliation-engine/internal/normalize"
)

// Table holds the lookup mappings. NameMap keys are search terms matched
// against the row details; AmountMap keys are absolute amounts fixed to
// two decimals.
type Table struct {
	NameMap   map[string]string `json:"name_map"`
	AmountMap map[string]string `json:"amount_map"`
}

// NewTable returns an empty lookup table.
func NewTable() *Table {
	return &Table{
		NameMap:   make(map[string]string),
		AmountMap: make(map[string]string),
	}
}

// Len returns the total number of mappings.
func (t *Table) Len() int {
	return len(t.NameMap) + len(t.AmountMap)
}

// Resolver answers supplier lookups over a table. The name keys are
// pre-sorted longest first so that substring resolution prefers the most
// specific term.
type Resolver struct {
	table    *Table
	nameKeys []string
}

// NewResolver prepares a resolver over the table. A nil table resolves
// nothing.
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = NewTable()
	}

	keys := make([]string, 0, len(table.NameMap))
	for k := range table.NameMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	return &Resolver{table: table, nameKeys: keys}
}

// Resolve finds the supplier account for a standing-order row. The chain
// is exact details match, then the longest search term contained in the
// details, then the absolute amount. An empty result means unresolved.
func (r *Resolver) Resolve(details string, amount decimal.Decimal, amountOK bool) string {
	details = strings.TrimSpace(details)

	if details != "" {
		if id, ok := r.table.NameMap[details]; ok {
			return id
		}
		for _, key := range r.nameKeys {
			if key != "" && strings.Contains(details, key) {
				return r.table.NameMap[key]
			}
		}
	}

	if amountOK {
		if id, ok := r.table.AmountMap[normalize.AmountKey(amount)]; ok {
			return id
		}
	}

	return ""
}

// CapturedRow is one standing-order bank row handed to the enrichment.
type CapturedRow struct {
	Details  string
	Amount   decimal.Decimal
	AmountOK bool
}

// Row is one line of the supplier report sheet. Amount keeps the signed
// bank amount; the sign decides which of Debit and Credit carries its
// absolute value. The summary row balances the resolved debits with a
// single credit.
type Row struct {
	Details    string
	Amount     decimal.Decimal
	SupplierID string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Resolved   bool
	Summary    bool
}

// Enrich resolves every captured row and appends the summary row whose
// credit balances the resolved debits. Rows come back in capture order.
func Enrich(resolver *Resolver, captured []CapturedRow) []Row {
	if len(captured) == 0 {
		return nil
	}

	rows := make([]Row, 0, len(captured)+1)
	total := decimal.Zero

	for _, c := range captured {
		row := Row{Details: strings.TrimSpace(c.Details)}
		if c.AmountOK {
			row.Amount = c.Amount.Round(2)
			if row.Amount.IsNegative() {
				row.Debit = row.Amount.Abs()
			} else {
				row.Credit = row.Amount.Abs()
			}
		}

		row.SupplierID = resolver.Resolve(c.Details, c.Amount, c.AmountOK)
		row.Resolved = row.SupplierID != ""
		if row.Resolved {
			total = total.Add(row.Debit)
		}

		rows = append(rows, row)
	}

	rows = append(rows, Row{
		SupplierID: "",
		Credit:     total.Round(2),
		Resolved:   true,
		Summary:    true,
	})

	return rows
}
