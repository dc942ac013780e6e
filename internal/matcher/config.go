// Package matcher implements the multi-rule reconciliation matching engine.
//
// The engine classifies each worksheet row with a small integer match code
// recording which rule, if any, explained it. Rules run in a fixed priority
// order over normalized row series and never overwrite a code outside their
// configured overwrite set, so a row is explained at most once per pass.
//
// Rule catalogue:
//
//	 1  OV/RC receipts        strict 1:1 pairing on (amount, date)
//	 2  Standing orders       bank-only tag, feeds supplier enrichment
//	 3  Transfers             event-group totals from the auxiliary file
//	 4  Supplier checks       reference-id matching with amount tolerance
//	 5  Fees                  capped positive amounts on fee codes
//	 6  Payment processor     negative amounts naming the processor
//	 7  Custody checks        exact-phrase deposits
//	 8  Transmitted deposits  exact-phrase deposits
//	 9  Machine deposits      exact-phrase deposits
//	10  Miscellaneous codes   any non-zero amount
//	11  Reserved              pass-through
//	12  Reserved              pass-through
//
// Example usage:
//
//	engine, err := matcher.NewEngine(matcher.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	engine.SetEvents(auxIndex)
//	sheet := matcher.LoadSheet(table)
//	result := engine.Run(sheet)
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Match codes assigned by the rule catalogue. Zero means unclassified.
const (
	CodeNone        = 0
	CodeOVRC        = 1
	CodeStanding    = 2
	CodeTransfer    = 3
	CodeCheck       = 4
	CodeFee         = 5
	CodeProcessor   = 6
	CodeCustody     = 7
	CodeTransmitted = 8
	CodeMachine     = 9
	CodeMisc        = 10
	CodeReserved11  = 11
	CodeReserved12  = 12
)

// TieBreakPolicy controls how rule 1 treats pairing keys shared by more
// than one candidate on either side.
type TieBreakPolicy string

const (
	// TieBreakStrict skips ambiguous keys entirely; the rows stay
	// unclassified for possible capture by a later rule.
	TieBreakStrict TieBreakPolicy = "strict"

	// TieBreakNearest pairs candidates by minimal row distance, consuming
	// each row at most once.
	TieBreakNearest TieBreakPolicy = "nearest"
)

// CheckStrategy selects the bipartite matching algorithm of rule 4.
type CheckStrategy string

const (
	// CheckStrategyGreedy consumes the first unused books candidate in
	// encounter order. This mirrors the historical behavior and can leave
	// a valid pairing undiscovered when several books rows share an id.
	CheckStrategyGreedy CheckStrategy = "greedy"

	// CheckStrategyExhaustive computes a maximum bipartite matching over
	// the eligible pairs, for deployments that prefer coverage over
	// encounter-order stability.
	CheckStrategyExhaustive CheckStrategy = "exhaustive"
)

// Config holds every constant and policy choice of the rule catalogue.
// The defaults reproduce the production worksheets; deployments against
// other banks adjust codes and phrases here, not in rule code.
type Config struct {
	// Rule 1: customer receipts referenced OV/RC.
	OVRCCodes    []int          `json:"ovrc_codes"`
	OVRCPrefixes []string       `json:"ovrc_prefixes"`
	TieBreak     TieBreakPolicy `json:"tie_break"`

	// Rule 2: standing orders.
	StandingCodes []int `json:"standing_codes"`

	// Rule 3: aggregated transfers.
	TransferCode      int             `json:"transfer_code"`
	TransferPhrase    string          `json:"transfer_phrase"`
	TransferTolerance decimal.Decimal `json:"transfer_tolerance"`

	// Rule 4: supplier checks.
	CheckCode          int             `json:"check_code"`
	CheckWord          string          `json:"check_word"`
	CheckPaymentPhrase string          `json:"check_payment_phrase"`
	CheckRefPrefix     string          `json:"check_ref_prefix"`
	CheckTolerance     decimal.Decimal `json:"check_tolerance"`
	CheckMatching      CheckStrategy   `json:"check_matching"`

	// Rule 5: fees.
	FeeCodes []int           `json:"fee_codes"`
	FeeCap   decimal.Decimal `json:"fee_cap"`

	// Rule 6: payment processor debits.
	ProcessorCode    int    `json:"processor_code"`
	ProcessorCompany string `json:"processor_company"`

	// Rules 7-9: exact-phrase check deposits.
	CustodyCode       int    `json:"custody_code"`
	CustodyPhrase     string `json:"custody_phrase"`
	TransmittedCode   int    `json:"transmitted_code"`
	TransmittedPhrase string `json:"transmitted_phrase"`
	MachineCode       int    `json:"machine_code"`
	MachinePhrase     string `json:"machine_phrase"`

	// Rule 10: miscellaneous codes.
	MiscCodes []int `json:"misc_codes"`

	// Overwritable lists, per rule code, the match codes the rule may
	// assign over. Every rule defaults to {0}; historical variants let
	// rules 3 and 4 reclaim standing-order rows, which is expressed here
	// as {0, 2} rather than hard-coded behavior.
	Overwritable map[int][]int `json:"overwritable"`
}

// DefaultConfig returns the production rule constants.
func DefaultConfig() *Config {
	return &Config{
		OVRCCodes:    []int{120, 175},
		OVRCPrefixes: []string{"OV", "RC"},
		TieBreak:     TieBreakStrict,

		StandingCodes: []int{469, 515},

		TransferCode:      485,
		TransferPhrase:    "העב' במקבץ-נט",
		TransferTolerance: decimal.Zero,

		CheckCode:          493,
		CheckWord:          "שיק",
		CheckPaymentPhrase: "תשלום",
		CheckRefPrefix:     "CH",
		CheckTolerance:     decimal.NewFromFloat(0.50),
		CheckMatching:      CheckStrategyGreedy,

		FeeCodes: []int{453, 472, 473, 124},
		FeeCap:   decimal.NewFromInt(500),

		ProcessorCode:    175,
		ProcessorCompany: `פאיימי בע"מ`,

		CustodyCode:       143,
		CustodyPhrase:     "שיקים ממשמרת",
		TransmittedCode:   191,
		TransmittedPhrase: "הפק' שיק-שידור",
		MachineCode:       205,
		MachinePhrase:     "הפק.שיק במכונה",

		MiscCodes: []int{191, 132, 396},

		Overwritable: map[int][]int{},
	}
}

// AllowStandingOverwrite permits rules 3 and 4 to reclaim rows already
// tagged as standing orders.
func (c *Config) AllowStandingOverwrite() *Config {
	if c.Overwritable == nil {
		c.Overwritable = make(map[int][]int)
	}
	c.Overwritable[CodeTransfer] = []int{CodeNone, CodeStanding}
	c.Overwritable[CodeCheck] = []int{CodeNone, CodeStanding}
	return c
}

// OverwritableFor returns the match codes the rule may assign over.
func (c *Config) OverwritableFor(rule int) []int {
	if codes, ok := c.Overwritable[rule]; ok && len(codes) > 0 {
		return codes
	}
	return []int{CodeNone}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	switch c.TieBreak {
	case TieBreakStrict, TieBreakNearest:
	default:
		return fmt.Errorf("invalid tie-break policy: %q", c.TieBreak)
	}

	switch c.CheckMatching {
	case CheckStrategyGreedy, CheckStrategyExhaustive:
	default:
		return fmt.Errorf("invalid check matching strategy: %q", c.CheckMatching)
	}

	if c.CheckTolerance.IsNegative() {
		return fmt.Errorf("check tolerance cannot be negative: %s", c.CheckTolerance)
	}

	if c.TransferTolerance.IsNegative() {
		return fmt.Errorf("transfer tolerance cannot be negative: %s", c.TransferTolerance)
	}

	if c.FeeCap.IsNegative() {
		return fmt.Errorf("fee cap cannot be negative: %s", c.FeeCap)
	}

	for rule, codes := range c.Overwritable {
		if rule < CodeOVRC || rule > CodeReserved12 {
			return fmt.Errorf("overwrite policy names unknown rule %d", rule)
		}
		for _, code := range codes {
			if code != CodeNone && code != CodeStanding {
				return fmt.Errorf("rule %d may not overwrite code %d", rule, code)
			}
		}
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.OVRCCodes = append([]int(nil), c.OVRCCodes...)
	clone.OVRCPrefixes = append([]string(nil), c.OVRCPrefixes...)
	clone.StandingCodes = append([]int(nil), c.StandingCodes...)
	clone.FeeCodes = append([]int(nil), c.FeeCodes...)
	clone.MiscCodes = append([]int(nil), c.MiscCodes...)

	clone.Overwritable = make(map[int][]int, len(c.Overwritable))
	for rule, codes := range c.Overwritable {
		clone.Overwritable[rule] = append([]int(nil), codes...)
	}

	return &clone
}

// String returns a human-readable description of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{TieBreak: %s, CheckMatching: %s, CheckTolerance: %s, FeeCap: %s}",
		c.TieBreak, c.CheckMatching, c.CheckTolerance, c.FeeCap)
}

func containsInt(codes []int, v int) bool {
	for _, c := range codes {
		if c == v {
			return true
		}
	}
	return false
}
