// Package normalize converts raw worksheet cell text into the typed values
// the rule engine compares: decimal amounts, calendar dates and digit-only
// reference identifiers.
//
// All functions here are total: a value that cannot be parsed reports
// ok=false (or the "0" sentinel for references) instead of returning an
// error, so a single bad cell excludes one row from one rule without
// aborting anything.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Characters stripped before numeric parsing: thousands separators,
// currency glyphs and bidirectional control marks that RTL spreadsheets
// embed inside otherwise numeric cells.
var numericStrip = strings.NewReplacer(
	",", "",
	"\u20aa", "",
	"$", "",
	"\u200e", "",
	"\u200f", "",
	"\u00a0", " ",
)

// Number parses a cell as a decimal amount. Empty or unparsable cells
// report ok=false.
func Number(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(numericStrip.Replace(s))
	if s == "" {
		return decimal.Zero, false
	}

	// Accounting convention: parentheses mean negative.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSpace(s[1:len(s)-1])
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Int parses a cell as an integer, tolerating decimal notation such as
// "175.0" that spreadsheet exports produce for numeric codes.
func Int(s string) (int, bool) {
	d, ok := Number(s)
	if !ok {
		return 0, false
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// AmountKey renders an amount as the canonical pairing-key form used by
// the rule engine: absolute value rounded to two decimal places.
func AmountKey(d decimal.Decimal) string {
	return d.Abs().Round(2).StringFixed(2)
}
